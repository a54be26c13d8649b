// Package router provides member module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/datajpa/internal/member/handler"
	"github.com/festy23/datajpa/internal/member/repository"
	"github.com/festy23/datajpa/internal/member/service"
	"github.com/festy23/datajpa/internal/persistence"
	"github.com/festy23/datajpa/internal/persistence/query"
)

// RegisterRoutes registers member module routes and returns the service
// behind them.
func RegisterRoutes(r gin.IRouter, manager *persistence.Manager, registry *query.Registry, logger *zap.SugaredLogger) service.Service {
	svc := service.New(manager, repository.NewFactory(registry, logger), logger)
	h := handler.New(svc, logger)

	r.GET("/members", h.List)
	r.GET("/members/:id", h.FindMember)
	r.GET("/members2/:id", h.ResolveMember, h.FindMember2)
	return svc
}
