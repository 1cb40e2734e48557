package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehail/internal/domain"
	"ridehail/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// RequestRideRequest is the HTTP request body for requesting a ride.
type RequestRideRequest struct {
	PassengerID     string `json:"passenger_id"`
	PickupAddress   string `json:"pickup_address"`
	PickupPostcode  string `json:"pickup_postcode"`
	DropoffAddress  string `json:"dropoff_address"`
	DropoffPostcode string `json:"dropoff_postcode"`
	Category        string `json:"category,omitempty"`       // STANDARD, POOL, LUXURY
	PaymentMethod   string `json:"payment_method,omitempty"` // CREDIT_CARD, WALLET, CASH
}

// DriverActionRequest is the HTTP request body for driver-side transitions.
type DriverActionRequest struct {
	DriverID string `json:"driver_id"`
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason,omitempty"`
}

// RateRideRequest is the HTTP request body for rating a ride.
type RateRideRequest struct {
	PassengerID string `json:"passenger_id"`
	Rating      int    `json:"rating"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID              string  `json:"id"`
	PassengerID     string  `json:"passenger_id"`
	DriverID        string  `json:"driver_id,omitempty"`
	PickupAddress   string  `json:"pickup_address"`
	PickupPostcode  string  `json:"pickup_postcode"`
	DropoffAddress  string  `json:"dropoff_address"`
	DropoffPostcode string  `json:"dropoff_postcode"`
	Status          string  `json:"status"`
	Category        string  `json:"category"`
	Fare            float64 `json:"fare"`
	DistanceKm      float64 `json:"distance_km"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	SurgeActive     bool    `json:"surge_active"`
	PaymentMethod   string  `json:"payment_method"`
	Rating          int     `json:"rating,omitempty"`
	RequestedAt     string  `json:"requested_at"`
	PickupTime      string  `json:"pickup_time,omitempty"`
	DropoffTime     string  `json:"dropoff_time,omitempty"`
	CancelledAt     string  `json:"cancelled_at,omitempty"`
	CancelReason    string  `json:"cancel_reason,omitempty"`
}

// CompleteRideResponse is the HTTP response for completing a ride. The
// settlement outcome is reported alongside the ride; a failed settlement is
// a warning, not an error status.
type CompleteRideResponse struct {
	Ride              RideResponse     `json:"ride"`
	SettlementApplied bool             `json:"settlement_applied"`
	SettlementNote    string           `json:"settlement_note,omitempty"`
	Receipt           *ReceiptResponse `json:"receipt,omitempty"`
}

// ReceiptResponse is the HTTP representation of a receipt.
type ReceiptResponse struct {
	ID              string  `json:"id"`
	RideID          string  `json:"ride_id"`
	BaseFare        float64 `json:"base_fare"`
	DistanceCharge  float64 `json:"distance_charge"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	SurgeAmount     float64 `json:"surge_amount"`
	TotalFare       float64 `json:"total_fare"`
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
	PaymentMethod   string  `json:"payment_method"`
	PaymentStatus   string  `json:"payment_status"`
}

// RequestRide handles POST /v1/rides
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	category, err := service.ValidateCategory(req.Category)
	if err != nil {
		respondError(c, err)
		return
	}

	paymentMethod, err := service.ValidatePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	ride, err := h.rideService.RequestRide(c.Request.Context(), service.RequestRideRequest{
		PassengerID:     req.PassengerID,
		PickupAddress:   req.PickupAddress,
		PickupPostcode:  req.PickupPostcode,
		DropoffAddress:  req.DropoffAddress,
		DropoffPostcode: req.DropoffPostcode,
		Category:        category,
		PaymentMethod:   paymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRideStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetAvailableRides handles GET /v1/rides/available
func (h *RideHandler) GetAvailableRides(c *gin.Context) {
	rides, err := h.rideService.GetAvailableRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}

// AcceptRide handles POST /v1/rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.AcceptRide(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// StartRide handles POST /v1/rides/:id/start
func (h *RideHandler) StartRide(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.StartRide(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.rideService.CompleteRide(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := CompleteRideResponse{
		Ride: toRideResponse(result.Ride),
	}
	if result.Settlement != nil {
		response.SettlementApplied = result.Settlement.Applied
		response.SettlementNote = result.Settlement.Reason
	}
	if result.SettlementErr != nil {
		response.SettlementNote = result.SettlementErr.Error()
	}
	if result.Receipt != nil {
		response.Receipt = toReceiptResponse(result.Receipt)
	}

	respondJSON(c, http.StatusOK, response)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CancelRide(c.Request.Context(), c.Param("id"), req.CancelledBy, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// RateRide handles POST /v1/rides/:id/rating
func (h *RideHandler) RateRide(c *gin.Context) {
	var req RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.RateRide(c.Request.Context(), c.Param("id"), req.PassengerID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func toRideResponse(ride *domain.Ride) RideResponse {
	response := RideResponse{
		ID:              ride.ID,
		PassengerID:     ride.PassengerID,
		DriverID:        ride.DriverID,
		PickupAddress:   ride.Pickup.Address,
		PickupPostcode:  ride.Pickup.Postcode,
		DropoffAddress:  ride.Dropoff.Address,
		DropoffPostcode: ride.Dropoff.Postcode,
		Status:          string(ride.Status),
		Category:        string(ride.Category),
		Fare:            ride.Fare,
		DistanceKm:      ride.DistanceKm,
		SurgeMultiplier: ride.SurgeMultiplier,
		SurgeActive:     ride.SurgeMultiplier > 1.0,
		PaymentMethod:   string(ride.PaymentMethod),
		Rating:          ride.Rating,
		RequestedAt:     ride.RequestedAt.Format(timeFormat),
	}

	if !ride.PickupTime.IsZero() {
		response.PickupTime = ride.PickupTime.Format(timeFormat)
	}
	if !ride.DropoffTime.IsZero() {
		response.DropoffTime = ride.DropoffTime.Format(timeFormat)
	}
	if !ride.CancelledAt.IsZero() {
		response.CancelledAt = ride.CancelledAt.Format(timeFormat)
		response.CancelReason = ride.CancelReason
	}

	return response
}

func toRideResponses(rides []*domain.Ride) []RideResponse {
	responses := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		responses = append(responses, toRideResponse(ride))
	}
	return responses
}

func toReceiptResponse(receipt *domain.Receipt) *ReceiptResponse {
	return &ReceiptResponse{
		ID:              receipt.ID,
		RideID:          receipt.RideID,
		BaseFare:        receipt.BaseFare,
		DistanceCharge:  receipt.DistanceCharge,
		SurgeMultiplier: receipt.SurgeMultiplier,
		SurgeAmount:     receipt.SurgeAmount,
		TotalFare:       receipt.TotalFare,
		DistanceKm:      receipt.DistanceKm,
		DurationMinutes: int(receipt.Duration.Minutes()),
		PaymentMethod:   string(receipt.PaymentMethod),
		PaymentStatus:   string(receipt.PaymentStatus),
	}
}
