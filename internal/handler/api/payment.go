package api

import (
	"errors"
	"net/http"

	"rently-backend/internal/domain/billing"
	reqdto "rently-backend/internal/handler/dto/request"
	resdto "rently-backend/internal/handler/dto/response"
	"rently-backend/internal/pkg/errs"
	"rently-backend/internal/usecase/commands"
	"rently-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	paymentCommands commands.PaymentCommands
	billQueries     queries.BillQueries
}

func NewPaymentHandler(paymentCommands commands.PaymentCommands, billQueries queries.BillQueries) *PaymentHandler {
	return &PaymentHandler{
		paymentCommands: paymentCommands,
		billQueries:     billQueries,
	}
}

// @Summary Get bill
// @Description Get bill by ID with its transactions
// @Tags bills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Success 200 {object} resdto.BillResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bills/{id} [get]
func (h *PaymentHandler) GetBill(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill ID format"})
		return
	}

	view, err := h.billQueries.GetByID(c.Request.Context(), actor.ID, id)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBillView(view))
}

// @Summary Initiate payment
// @Description Open a payment attempt for a bill, gateway or cash on delivery
// @Tags bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Param request body reqdto.InitiatePaymentRequest true "Payment method"
// @Success 201 {object} resdto.InitiatePaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 402 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bills/{id}/payments [post]
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill ID format"})
		return
	}

	var req reqdto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.paymentCommands.Initiate(c.Request.Context(), actor, billID, billing.PaymentMethod(req.Method))
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromInitiatePaymentResult(result))
}

// @Summary Verify payment
// @Description Verify a gateway checkout signature and settle the bill
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.VerifyPaymentRequest true "Checkout callback fields"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 402 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /payments/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.paymentCommands.Verify(c.Request.Context(), actor, req.ToCommand()); err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paid"})
}

func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrBillNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Bill not found"})
	case errors.Is(err, errs.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, errs.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
	case errors.Is(err, errs.ErrForbiddenActor):
		c.JSON(http.StatusForbidden, gin.H{"error": "Action not permitted for this actor"})
	case errors.Is(err, errs.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is not open for payment"})
	case errors.Is(err, errs.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": "Bill is already paid"})
	case errors.Is(err, errs.ErrPaymentFailure):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment verification failed"})
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
