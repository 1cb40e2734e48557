package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/events"
	"ridehail/internal/geo"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

// acceptLockTTL bounds how long an accept attempt may hold the ride lock.
const acceptLockTTL = 10 * time.Second

// RideService owns the ride lifecycle: it enforces legal status
// transitions, stamps lifecycle timestamps, and hands completed rides to
// the settlement coordinator.
//
// Every guarded transition is applied as a compare-and-transition against
// the persisted ride, so two racing operations can never both move the same
// ride out of a state.
type RideService struct {
	rideRepo    repository.RideRepository
	driverRepo  repository.DriverRepository
	uow         repository.UnitOfWork
	geoProvider geo.Provider
	fareCalc    *FareCalculator
	surge       *SurgeService
	settlement  *SettlementCoordinator
	receipts    *ReceiptService
	lockStore   redis.LockStoreInterface
	cacheStore  redis.CacheStoreInterface
	sink        events.Sink
}

// NewRideService creates a new RideService. surge, receipts, lockStore and
// cacheStore may be nil; the service degrades gracefully without them.
func NewRideService(
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	uow repository.UnitOfWork,
	geoProvider geo.Provider,
	fareCalc *FareCalculator,
	surge *SurgeService,
	settlement *SettlementCoordinator,
	receipts *ReceiptService,
	lockStore redis.LockStoreInterface,
	cacheStore redis.CacheStoreInterface,
	sink events.Sink,
) *RideService {
	return &RideService{
		rideRepo:    rideRepo,
		driverRepo:  driverRepo,
		uow:         uow,
		geoProvider: geoProvider,
		fareCalc:    fareCalc,
		surge:       surge,
		settlement:  settlement,
		receipts:    receipts,
		lockStore:   lockStore,
		cacheStore:  cacheStore,
		sink:        sink,
	}
}

// RequestRideRequest contains the parameters for requesting a ride.
type RequestRideRequest struct {
	PassengerID     string
	PickupAddress   string
	PickupPostcode  string
	DropoffAddress  string
	DropoffPostcode string
	Category        domain.RideCategory
	PaymentMethod   domain.PaymentType
}

// RequestRide creates a ride in REQUESTED state. It geocodes both
// postcodes, computes the distance, fixes the surge multiplier and fare,
// and creates the ride together with its PENDING payment in one
// transaction.
//
// A passenger with another ride in flight is rejected: one active ride per
// passenger.
func (s *RideService) RequestRide(ctx context.Context, req RequestRideRequest) (*domain.Ride, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	active, err := s.rideRepo.GetActiveByPassenger(ctx, req.PassengerID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveRideExists
	}

	pickupLat, pickupLng := s.geoProvider.Geocode(ctx, req.PickupPostcode)
	dropoffLat, dropoffLng := s.geoProvider.Geocode(ctx, req.DropoffPostcode)

	pickup := domain.Location{
		Latitude:  pickupLat,
		Longitude: pickupLng,
		Address:   req.PickupAddress,
		Postcode:  req.PickupPostcode,
	}
	dropoff := domain.Location{
		Latitude:  dropoffLat,
		Longitude: dropoffLng,
		Address:   req.DropoffAddress,
		Postcode:  req.DropoffPostcode,
	}

	distanceKm := s.geoProvider.Distance(ctx, pickup, dropoff)

	surgeMultiplier := 1.0
	if s.surge != nil {
		surgeMultiplier = s.surge.GetMultiplier(ctx, pickupLat, pickupLng)
	}

	fare := s.fareCalc.Calculate(distanceKm, req.Category, surgeMultiplier)

	now := time.Now()
	ride := &domain.Ride{
		ID:              uuid.New().String(),
		PassengerID:     req.PassengerID,
		Pickup:          pickup,
		Dropoff:         dropoff,
		Status:          domain.RideStatusRequested,
		Category:        req.Category,
		Fare:            fare,
		DistanceKm:      distanceKm,
		SurgeMultiplier: surgeMultiplier,
		PaymentMethod:   req.PaymentMethod,
		RequestedAt:     now,
	}

	payment := &domain.Payment{
		ID:        uuid.New().String(),
		RideID:    ride.ID,
		Amount:    fare,
		Type:      req.PaymentMethod,
		Status:    domain.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The ride and its payment are born together or not at all.
	err = s.uow.Atomically(ctx, func(tx repository.RepositorySet) error {
		if err := tx.Rides.Create(ctx, ride); err != nil {
			return err
		}
		return tx.Payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.sink.Publish(ctx, events.RideRequested, ride)

	return ride, nil
}

// AcceptRide assigns a driver to a REQUESTED ride. Exactly one of any
// number of concurrent accept attempts wins: the transition is guarded on
// the REQUESTED status, and a Redis ride lock narrows the race window
// before the database decides.
func (s *RideService) AcceptRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireRideLock(ctx, rideID, acceptLockTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: acquiring ride lock: %v", ErrUpstream, err)
		}
		if !locked {
			return nil, ErrRideAlreadyAccepted
		}
		defer s.lockStore.ReleaseRideLock(ctx, rideID)
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusRequested {
		return nil, ErrRideAlreadyAccepted
	}

	ride.DriverID = driverID
	ride.Status = domain.RideStatusAccepted

	if err := s.rideRepo.CompareAndTransition(ctx, ride, domain.RideStatusRequested); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrRideAlreadyAccepted
		}
		return nil, err
	}

	s.invalidateCache(ctx, ride.ID)
	s.sink.Publish(ctx, events.RideAccepted, ride)

	return ride, nil
}

// StartRide marks an ACCEPTED ride as PICKED_UP and stamps the pickup
// time. Only the assigned driver may start the ride.
func (s *RideService) StartRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusAccepted {
		return nil, ErrInvalidTransition
	}
	if ride.DriverID != driverID {
		return nil, ErrNotRideDriver
	}

	ride.Status = domain.RideStatusPickedUp
	ride.PickupTime = time.Now()

	if err := s.rideRepo.CompareAndTransition(ctx, ride, domain.RideStatusAccepted); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.invalidateCache(ctx, ride.ID)
	s.sink.Publish(ctx, events.RideStarted, ride)

	return ride, nil
}

// CompleteRideResponse contains the result of completing a ride. The
// settlement outcome rides along: a settlement failure does not undo the
// completed ride, it is reported here instead.
type CompleteRideResponse struct {
	Ride          *domain.Ride
	Settlement    *SettlementResult
	SettlementErr error
	Receipt       *domain.Receipt
}

// CompleteRide marks a PICKED_UP ride as COMPLETED, stamps the dropoff
// time, and settles the payment. The status transition commits first;
// settlement failure (insufficient wallet, gateway decline) leaves the ride
// COMPLETED and is surfaced on the response.
func (s *RideService) CompleteRide(ctx context.Context, rideID, driverID string) (*CompleteRideResponse, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusPickedUp {
		return nil, ErrInvalidTransition
	}
	if ride.DriverID != driverID {
		return nil, ErrNotRideDriver
	}

	ride.Status = domain.RideStatusCompleted
	ride.DropoffTime = time.Now()

	if err := s.rideRepo.CompareAndTransition(ctx, ride, domain.RideStatusPickedUp); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.invalidateCache(ctx, ride.ID)

	resp := &CompleteRideResponse{Ride: ride}

	result, settleErr := s.settlement.Settle(ctx, ride)
	resp.Settlement = result
	resp.SettlementErr = settleErr

	s.sink.Publish(ctx, events.RideCompleted, ride)

	if s.receipts != nil {
		payment := (*domain.Payment)(nil)
		if result != nil {
			payment = result.Payment
		}
		resp.Receipt, _ = s.receipts.Generate(ctx, ride, payment)
	}

	return resp, nil
}

// CancelRide moves a non-terminal ride to CANCELLED. Only the ride's
// passenger or its assigned driver may cancel. No refund is triggered.
func (s *RideService) CancelRide(ctx context.Context, rideID, actorID, reason string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if actorID == "" {
		return nil, ErrInvalidPassengerID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if actorID != ride.PassengerID && actorID != ride.DriverID {
		return nil, ErrNotRideParticipant
	}

	if ride.Status.Terminal() {
		return nil, ErrInvalidTransition
	}

	from := ride.Status
	ride.Status = domain.RideStatusCancelled
	ride.CancelledAt = time.Now()
	ride.CancelReason = reason

	if err := s.rideRepo.CompareAndTransition(ctx, ride, from); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.invalidateCache(ctx, ride.ID)
	s.sink.Publish(ctx, events.RideCancelled, ride)

	return ride, nil
}

// RateRide sets the rating on a COMPLETED ride. Only the ride's passenger
// may rate, only once, and only with a value in 1..5.
func (s *RideService) RateRide(ctx context.Context, rideID, passengerID string, rating int) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.PassengerID != passengerID {
		return nil, ErrNotRidePassenger
	}
	if ride.Status != domain.RideStatusCompleted {
		return nil, ErrRideNotCompleted
	}
	if ride.Rating != 0 {
		return nil, ErrAlreadyRated
	}

	// The repository guards the write on the ride still being COMPLETED and
	// unrated, so a concurrent rating loses here rather than overwriting.
	if err := s.rideRepo.SetRating(ctx, rideID, rating); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyRated):
			return nil, ErrAlreadyRated
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, ErrRideNotCompleted
		}
		return nil, err
	}

	ride.Rating = rating
	return ride, nil
}

// GetRideStatus retrieves a ride, serving repeated status polls from cache
// between transitions. Every transition invalidates the cached copy, so a
// hit reflects the current status.
func (s *RideService) GetRideStatus(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetRide(ctx, rideID); err == nil && cached != nil {
			return cached, nil
		}
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetRide(ctx, ride)
	}

	return ride, nil
}

// GetCurrentRide retrieves the passenger's in-flight ride, or ErrNotFound.
func (s *RideService) GetCurrentRide(ctx context.Context, passengerID string) (*domain.Ride, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	ride, err := s.rideRepo.GetActiveByPassenger(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, repository.ErrNotFound
	}
	return ride, nil
}

// GetAvailableRides lists REQUESTED rides for drivers to pick from.
func (s *RideService) GetAvailableRides(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.GetByStatus(ctx, domain.RideStatusRequested)
}

// GetPassengerHistory lists the passenger's non-cancelled rides.
func (s *RideService) GetPassengerHistory(ctx context.Context, passengerID string) ([]*domain.Ride, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	return s.rideRepo.GetHistoryByPassenger(ctx, passengerID)
}

// GetDriverHistory lists the driver's non-cancelled rides.
func (s *RideService) GetDriverHistory(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.rideRepo.GetHistoryByDriver(ctx, driverID)
}

func (s *RideService) validateRequest(req RequestRideRequest) error {
	if req.PassengerID == "" {
		return ErrInvalidPassengerID
	}
	if req.PickupAddress == "" || req.PickupPostcode == "" {
		return ErrInvalidLocation
	}
	if req.DropoffAddress == "" || req.DropoffPostcode == "" {
		return ErrInvalidLocation
	}

	switch req.Category {
	case domain.RideCategoryStandard, domain.RideCategoryPool, domain.RideCategoryLuxury:
	default:
		return ErrInvalidCategory
	}

	switch req.PaymentMethod {
	case domain.PaymentTypeCreditCard, domain.PaymentTypeWallet, domain.PaymentTypeCash:
	default:
		return ErrInvalidPaymentMethod
	}

	return nil
}

func (s *RideService) invalidateCache(ctx context.Context, rideID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateRide(ctx, rideID)
}

// ValidateCategory validates a ride category string, defaulting empty to
// STANDARD.
func ValidateCategory(category string) (domain.RideCategory, error) {
	switch domain.RideCategory(category) {
	case domain.RideCategoryStandard, domain.RideCategoryPool, domain.RideCategoryLuxury:
		return domain.RideCategory(category), nil
	case "":
		return domain.RideCategoryStandard, nil
	default:
		return "", ErrInvalidCategory
	}
}

// ValidatePaymentMethod validates a payment method string, defaulting empty
// to WALLET.
func ValidatePaymentMethod(method string) (domain.PaymentType, error) {
	switch domain.PaymentType(method) {
	case domain.PaymentTypeCreditCard, domain.PaymentTypeWallet, domain.PaymentTypeCash:
		return domain.PaymentType(method), nil
	case "":
		return domain.PaymentTypeWallet, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}
