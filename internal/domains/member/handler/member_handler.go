package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"library-backend/internal/domains/member/model"
	"library-backend/internal/domains/member/service"
	"library-backend/internal/shared/response"
	"library-backend/pkg/logger"
)

type MemberHandler struct {
	svc service.Service
}

func NewMemberHandler(svc service.Service) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// RegisterMember creates a member
// POST /members
func (h *MemberHandler) RegisterMember(c *gin.Context) {
	var req model.RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, m)
}

// GetMember returns a single member
// GET /members/:id
func (h *MemberHandler) GetMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid member ID")
		return
	}

	m, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, m)
}

// ListMembers returns all members
// GET /members
func (h *MemberHandler) ListMembers(c *gin.Context) {
	members, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, members, &response.Meta{Total: len(members)})
}

// UpdateMember replaces a member profile
// PUT /members/:id
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid member ID")
		return
	}

	var req model.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, m)
}

func (h *MemberHandler) respondError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed", vErrs)
	case errors.Is(err, model.ErrMemberNotFound):
		response.NotFound(c, "Member not found")
	case errors.Is(err, model.ErrEmailAlreadyExists):
		response.Conflict(c, "Email already exists")
	default:
		logger.Error("member handler: unexpected error", err)
		response.InternalServerError(c, "Internal server error")
	}
}
