package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/domain"
	"ridehail/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ProcessPaymentRequest is the HTTP request body for retrying a payment.
type ProcessPaymentRequest struct {
	RideID      string `json:"ride_id"`
	PassengerID string `json:"passenger_id"`
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	ID           string  `json:"id"`
	RideID       string  `json:"ride_id"`
	Amount       float64 `json:"amount"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	ProcessorRef string  `json:"processor_ref,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// ProcessPaymentResponse is the HTTP response for a settlement attempt.
type ProcessPaymentResponse struct {
	Applied bool             `json:"applied"`
	Note    string           `json:"note,omitempty"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

// ProcessPayment handles POST /v1/payments/process
//
// This is the retry path for rides whose settlement failed at completion
// time, typically after a wallet top-up.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.paymentService.ProcessPayment(c.Request.Context(), req.RideID, req.PassengerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := ProcessPaymentResponse{
		Applied: result.Applied,
		Note:    result.Reason,
	}
	if result.Payment != nil {
		response.Payment = toPaymentResponse(result.Payment)
	}

	respondJSON(c, http.StatusOK, response)
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// GetPaymentForRide handles GET /v1/rides/:id/payment
func (h *PaymentHandler) GetPaymentForRide(c *gin.Context) {
	payment, err := h.paymentService.GetPaymentForRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// GetHistory handles GET /v1/passengers/:id/payments
func (h *PaymentHandler) GetHistory(c *gin.Context) {
	payments, err := h.paymentService.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]*PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		responses = append(responses, toPaymentResponse(payment))
	}

	respondJSON(c, http.StatusOK, responses)
}

// RefundPayment handles POST /v1/payments/:id/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	payment, err := h.paymentService.RefundPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

func toPaymentResponse(payment *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:           payment.ID,
		RideID:       payment.RideID,
		Amount:       payment.Amount,
		Type:         string(payment.Type),
		Status:       string(payment.Status),
		ProcessorRef: payment.ProcessorRef,
		CreatedAt:    payment.CreatedAt.Format(timeFormat),
		UpdatedAt:    payment.UpdatedAt.Format(timeFormat),
	}
}
