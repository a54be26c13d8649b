// Package handler provides HTTP handlers for team endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/datajpa/internal/persistence"
	teamModel "github.com/festy23/datajpa/internal/team/model"
	"github.com/festy23/datajpa/internal/team/service"
)

// Handler handles HTTP requests for team endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new team handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Create handles POST /teams request.
func (h *Handler) Create(c *gin.Context) {
	var req teamModel.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "invalid request body")
		return
	}

	team, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, teamModel.ErrInvalidTeamName) || errors.Is(err, persistence.ErrConstraintViolation) {
			badRequestResponse(c, "invalid team name")
			return
		}
		h.logger.Errorw("error creating team", "error", err)
		internalErrorResponse(c)
		return
	}

	c.JSON(http.StatusCreated, teamModel.NewTeamResponse(team))
}

// Get handles GET /teams/:id request.
func (h *Handler) Get(c *gin.Context) {
	id, ok := teamID(c)
	if !ok {
		return
	}

	team, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleLookupError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, teamModel.NewTeamResponse(team))
}

// Members handles GET /teams/:id/members request.
func (h *Handler) Members(c *gin.Context) {
	id, ok := teamID(c)
	if !ok {
		return
	}

	members, err := h.service.Members(c.Request.Context(), id)
	if err != nil {
		h.handleLookupError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

func (h *Handler) handleLookupError(c *gin.Context, id int64, err error) {
	if errors.Is(err, teamModel.ErrTeamNotFound) {
		notFoundResponse(c, "team not found")
		return
	}
	h.logger.Errorw("error getting team", "team_id", id, "error", err)
	internalErrorResponse(c)
}

func teamID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
