package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	bookmodel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/lending/model"
	"library-backend/internal/domains/lending/service"
	membermodel "library-backend/internal/domains/member/model"
	"library-backend/internal/shared/response"
	"library-backend/pkg/logger"
)

type LendingHandler struct {
	svc service.Service
}

func NewLendingHandler(svc service.Service) *LendingHandler {
	return &LendingHandler{svc: svc}
}

// BorrowBook lends a book to a member
// POST /books/:id/borrow
func (h *LendingHandler) BorrowBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	var req model.BorrowBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	b, err := h.svc.BorrowBook(c.Request.Context(), bookID, req.MemberID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

// ReturnBook closes the active loan for a book
// POST /books/:id/return
func (h *LendingHandler) ReturnBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	b, err := h.svc.ReturnBook(c.Request.Context(), bookID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

// ListMemberLoans returns a member's borrowing history
// GET /members/:id/loans
func (h *LendingHandler) ListMemberLoans(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid member ID")
		return
	}

	records, err := h.svc.ListMemberLoans(c.Request.Context(), memberID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, records, &response.Meta{Total: len(records)})
}

// respondError maps the lending error taxonomy onto HTTP statuses:
// missing references 404, state conflicts 409, the borrowing limit 409
// with its own code, validation 400, everything else 500.
func (h *LendingHandler) respondError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed", vErrs)
	case errors.Is(err, bookmodel.ErrBookNotFound):
		response.NotFound(c, "Book not found")
	case errors.Is(err, membermodel.ErrMemberNotFound):
		response.NotFound(c, "Member not found")
	case errors.Is(err, model.ErrBookNotAvailable):
		response.Conflict(c, "Book is not available for borrowing")
	case errors.Is(err, model.ErrNoActiveLoan):
		response.Conflict(c, "Book is already available or has no active borrowing record")
	case errors.Is(err, model.ErrBorrowingLimitExceeded):
		response.LimitExceeded(c, "Member has reached the borrowing limit")
	default:
		logger.Error("lending handler: unexpected error", err)
		response.InternalServerError(c, "Internal server error")
	}
}
