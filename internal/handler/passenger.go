package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/domain"
	"ridehail/internal/service"
)

// PassengerHandler handles HTTP requests for passengers.
type PassengerHandler struct {
	passengerService *service.PassengerService
	rideService      *service.RideService
}

// NewPassengerHandler creates a new PassengerHandler.
func NewPassengerHandler(passengerService *service.PassengerService, rideService *service.RideService) *PassengerHandler {
	return &PassengerHandler{
		passengerService: passengerService,
		rideService:      rideService,
	}
}

// RegisterPassengerRequest is the HTTP request body for registering a
// passenger.
type RegisterPassengerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	PreferredPay string `json:"preferred_payment_method,omitempty"`
}

// TopUpRequest is the HTTP request body for a wallet top-up.
type TopUpRequest struct {
	Amount float64 `json:"amount"`
}

// PassengerResponse is the HTTP representation of a passenger.
type PassengerResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone,omitempty"`
	WalletBalance float64 `json:"wallet_balance"`
	PreferredPay  string  `json:"preferred_payment_method"`
	CreatedAt     string  `json:"created_at"`
}

// Register handles POST /v1/passengers
func (h *PassengerHandler) Register(c *gin.Context) {
	var req RegisterPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	passenger, err := h.passengerService.Register(c.Request.Context(), service.RegisterPassengerRequest{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PreferredPay: req.PreferredPay,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPassengerResponse(passenger))
}

// Get handles GET /v1/passengers/:id
func (h *PassengerHandler) Get(c *gin.Context) {
	passenger, err := h.passengerService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPassengerResponse(passenger))
}

// TopUpWallet handles POST /v1/passengers/:id/wallet/topup
func (h *PassengerHandler) TopUpWallet(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	passenger, err := h.passengerService.TopUpWallet(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPassengerResponse(passenger))
}

// GetCurrentRide handles GET /v1/passengers/:id/rides/current
func (h *PassengerHandler) GetCurrentRide(c *gin.Context) {
	ride, err := h.rideService.GetCurrentRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetRideHistory handles GET /v1/passengers/:id/rides
func (h *PassengerHandler) GetRideHistory(c *gin.Context) {
	rides, err := h.rideService.GetPassengerHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}

func toPassengerResponse(passenger *domain.Passenger) PassengerResponse {
	return PassengerResponse{
		ID:            passenger.ID,
		Name:          passenger.Name,
		Email:         passenger.Email,
		Phone:         passenger.Phone,
		WalletBalance: passenger.WalletBalance,
		PreferredPay:  string(passenger.PreferredPay),
		CreatedAt:     passenger.CreatedAt.Format(timeFormat),
	}
}
