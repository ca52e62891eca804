package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/application/service"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/request"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/response"
	"github.com/sangkips/velo-register/pkg/pagination"
)

// CheckoutHandler runs checkouts and lists the checkout journal
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout turns the operator's cart into an order.
//
//	Success        201 with the result
//	PartialSuccess 200 with the result and a warning; the order exists
//	Failure        4xx/5xx from the failing step, with the result
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var req request.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), operatorID, service.CheckoutOptions{
		SupportsLocalDownload: req.SupportsLocalDownload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	switch result.Outcome {
	case enum.OutcomeSuccess:
		response.Created(c, "Sale completed", result)
	case enum.OutcomePartialSuccess:
		response.SuccessWithWarning(c, "Order recorded with warnings", result.Reason, result)
	default:
		cause := result.Err
		if cause == nil {
			cause = errors.New(result.Reason)
		}
		response.ErrorWithData(c, cause, result.Reason, result)
	}
}

// State returns where the operator's checkout currently is
func (h *CheckoutHandler) State(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	state, err := h.checkoutService.State(c.Request.Context(), operatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Checkout state retrieved", gin.H{"state": state})
}

// List pages through the operator's checkout journal. Passing cursor or
// limit switches to keyset pagination.
func (h *CheckoutHandler) List(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var req request.CheckoutListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query: "+err.Error())
		return
	}

	if req.Cursor != "" || req.Limit > 0 {
		result, err := h.checkoutService.ListRecordsWithCursor(c.Request.Context(), operatorID, &pagination.CursorParams{
			Cursor:    req.Cursor,
			Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
			Limit:     req.Limit,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.SuccessWithCursor(c, "Checkouts retrieved successfully", result)
		return
	}

	params := &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage}
	params.Validate()
	result, err := h.checkoutService.ListRecords(c.Request.Context(), operatorID, params, req.PendingOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Checkouts retrieved successfully", result)
}
