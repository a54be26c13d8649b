// Package router provides team module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/datajpa/internal/persistence"
	"github.com/festy23/datajpa/internal/team/handler"
	"github.com/festy23/datajpa/internal/team/repository"
	"github.com/festy23/datajpa/internal/team/service"
)

// RegisterRoutes registers team module routes.
func RegisterRoutes(r gin.IRouter, manager *persistence.Manager, logger *zap.SugaredLogger) {
	svc := service.New(manager, repository.NewFactory(logger), logger)
	h := handler.New(svc, logger)

	r.POST("/teams", h.Create)
	r.GET("/teams/:id", h.Get)
	r.GET("/teams/:id/members", h.Members)
}
