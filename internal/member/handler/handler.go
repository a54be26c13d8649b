// Package handler provides HTTP handlers for member endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	memberModel "github.com/festy23/datajpa/internal/member/model"
	"github.com/festy23/datajpa/internal/member/service"
	"github.com/festy23/datajpa/internal/persistence/query"
)

// Paging defaults of GET /members.
const (
	DefaultPageSize = 12
	DefaultSort     = "username,desc"
)

const memberKey = "member"

// Handler handles HTTP requests for member endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new member handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// FindMember handles GET /members/:id and responds with the username as text.
func (h *Handler) FindMember(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	username, err := h.service.GetUsername(c.Request.Context(), id)
	if err != nil {
		h.handleLookupError(c, id, err)
		return
	}

	c.String(http.StatusOK, username)
}

// ResolveMember loads the member named by the :id path parameter and stores
// it in the context for the next handler.
func (h *Handler) ResolveMember(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	member, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleLookupError(c, id, err)
		return
	}

	c.Set(memberKey, member)
	c.Next()
}

// FindMember2 handles GET /members2/:id after ResolveMember.
func (h *Handler) FindMember2(c *gin.Context) {
	member, ok := c.Get(memberKey)
	if !ok {
		h.logger.Errorw("FindMember2 called without ResolveMember")
		internalErrorResponse(c)
		return
	}
	c.String(http.StatusOK, member.(*memberModel.Member).Username)
}

// List handles GET /members?page=&size=&sort=property,direction.
func (h *Handler) List(c *gin.Context) {
	req, err := pageRequest(c)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	page, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, query.ErrUnknownField) || errors.Is(err, query.ErrInvalidPageRequest) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Errorw("error listing members", "page", req.Page, "size", req.Size, "error", err)
		internalErrorResponse(c)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) handleLookupError(c *gin.Context, id int64, err error) {
	if errors.Is(err, memberModel.ErrMemberNotFound) {
		notFoundResponse(c, "member not found")
		return
	}
	h.logger.Errorw("error getting member", "member_id", id, "error", err)
	internalErrorResponse(c)
}

func memberID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// pageRequest reads paging parameters. Unparsable or out-of-range page and
// size fall back to defaults and size is capped at query.MaxPageSize.
func pageRequest(c *gin.Context) (query.PageRequest, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	if size > query.MaxPageSize {
		size = query.MaxPageSize
	}

	sorts := c.QueryArray("sort")
	if len(sorts) == 0 {
		sorts = []string{DefaultSort}
	}
	sort, err := query.ParseSort(sorts...)
	if err != nil {
		return query.PageRequest{}, err
	}

	return query.Of(page, size, sort)
}
