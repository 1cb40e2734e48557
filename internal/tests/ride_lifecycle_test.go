package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ridehail/internal/domain"
	"ridehail/internal/events"
	"ridehail/internal/service"
)

// rideFixture wires a RideService over mocks.
type rideFixture struct {
	rides      *MockRideRepository
	payments   *MockPaymentRepository
	passengers *MockPassengerRepository
	drivers    *MockDriverRepository
	uow        *MockUnitOfWork
	lockStore  *MockLockStore
	cacheStore *MockCacheStore
	gateway    *MockCardGateway
	sink       *CaptureSink
	svc        *service.RideService
	settlement *service.SettlementCoordinator
	paymentSvc *service.PaymentService
}

func newRideFixture() *rideFixture {
	rides := NewMockRideRepository()
	payments := NewMockPaymentRepository()
	payments.Rides = rides
	passengers := NewMockPassengerRepository()
	drivers := NewMockDriverRepository()
	uow := NewMockUnitOfWork(rides, payments, passengers, drivers)
	lockStore := NewMockLockStore()
	cacheStore := NewMockCacheStore()
	gateway := NewMockCardGateway()
	sink := NewCaptureSink()

	settlement := service.NewSettlementCoordinator(uow, payments, gateway, sink)
	receipts := service.NewReceiptService(sink)

	svc := service.NewRideService(
		rides, drivers, uow,
		NewMockGeoProvider(5.0),
		service.NewFareCalculator(),
		nil, // surge
		settlement,
		receipts,
		lockStore,
		cacheStore,
		sink,
	)

	return &rideFixture{
		rides:      rides,
		payments:   payments,
		passengers: passengers,
		drivers:    drivers,
		uow:        uow,
		lockStore:  lockStore,
		cacheStore: cacheStore,
		gateway:    gateway,
		sink:       sink,
		svc:        svc,
		settlement: settlement,
		paymentSvc: service.NewPaymentService(payments, rides, settlement),
	}
}

func (f *rideFixture) addPassenger(id string, balance float64) {
	f.passengers.AddPassenger(&domain.Passenger{
		ID:            id,
		Name:          "Test Passenger",
		Email:         id + "@example.com",
		WalletBalance: balance,
	})
}

func (f *rideFixture) addDriver(id string) {
	f.drivers.AddDriver(&domain.Driver{
		ID:            id,
		Name:          "Test Driver",
		Email:         id + "@example.com",
		LicenseNumber: "LIC-" + id,
	})
}

func requestRideReq(passengerID string) service.RequestRideRequest {
	return service.RequestRideRequest{
		PassengerID:     passengerID,
		PickupAddress:   "1 Main Street",
		PickupPostcode:  "SW1A 1AA",
		DropoffAddress:  "99 High Street",
		DropoffPostcode: "E1 6AN",
		Category:        domain.RideCategoryStandard,
		PaymentMethod:   domain.PaymentTypeWallet,
	}
}

// requestAndDrive moves a fresh ride to the given status.
func (f *rideFixture) requestAndDrive(t *testing.T, passengerID, driverID string, target domain.RideStatus) *domain.Ride {
	t.Helper()
	ctx := context.Background()

	ride, err := f.svc.RequestRide(ctx, requestRideReq(passengerID))
	if err != nil {
		t.Fatalf("RequestRide: %v", err)
	}
	if target == domain.RideStatusRequested {
		return ride
	}

	if _, err := f.svc.AcceptRide(ctx, ride.ID, driverID); err != nil {
		t.Fatalf("AcceptRide: %v", err)
	}
	if target == domain.RideStatusAccepted {
		return f.rides.GetRide(ride.ID)
	}

	if _, err := f.svc.StartRide(ctx, ride.ID, driverID); err != nil {
		t.Fatalf("StartRide: %v", err)
	}
	if target == domain.RideStatusPickedUp {
		return f.rides.GetRide(ride.ID)
	}

	if _, err := f.svc.CompleteRide(ctx, ride.ID, driverID); err != nil {
		t.Fatalf("CompleteRide: %v", err)
	}
	return f.rides.GetRide(ride.ID)
}

func TestRequestRide_CreatesRideAndPendingPayment(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)

	ride, err := f.svc.RequestRide(context.Background(), requestRideReq("p1"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusRequested {
		t.Errorf("status = %s, want REQUESTED", ride.Status)
	}
	// 5 base + 5km * 2.0 standard, no surge.
	if ride.Fare != 15.0 {
		t.Errorf("fare = %v, want 15.0", ride.Fare)
	}
	if ride.SurgeMultiplier != 1.0 {
		t.Errorf("surge = %v, want 1.0", ride.SurgeMultiplier)
	}

	payment, err := f.payments.GetByRideID(context.Background(), ride.ID)
	if err != nil || payment == nil {
		t.Fatalf("expected payment for ride, got (%v, %v)", payment, err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("payment status = %s, want PENDING", payment.Status)
	}
	if payment.Amount != ride.Fare {
		t.Errorf("payment amount = %v, want %v", payment.Amount, ride.Fare)
	}

	if !f.sink.Has(events.RideRequested) {
		t.Error("expected RIDE_REQUESTED event")
	}
}

func TestRequestRide_RejectsSecondActiveRide(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)

	if _, err := f.svc.RequestRide(context.Background(), requestRideReq("p1")); err != nil {
		t.Fatalf("first request: %v", err)
	}

	_, err := f.svc.RequestRide(context.Background(), requestRideReq("p1"))
	if !errors.Is(err, service.ErrActiveRideExists) {
		t.Errorf("second request: got %v, want ErrActiveRideExists", err)
	}
}

func TestRequestRide_AllowedAgainAfterCancel(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	ctx := context.Background()

	ride, err := f.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.svc.CancelRide(ctx, ride.ID, "p1", "changed my mind"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.svc.RequestRide(ctx, requestRideReq("p1")); err != nil {
		t.Errorf("request after cancel: %v", err)
	}
}

func TestRequestRide_ValidationFailures(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)

	testCases := []struct {
		name    string
		mutate  func(*service.RequestRideRequest)
		wantErr error
	}{
		{
			name:    "missing passenger",
			mutate:  func(r *service.RequestRideRequest) { r.PassengerID = "" },
			wantErr: service.ErrInvalidPassengerID,
		},
		{
			name:    "missing pickup postcode",
			mutate:  func(r *service.RequestRideRequest) { r.PickupPostcode = "" },
			wantErr: service.ErrInvalidLocation,
		},
		{
			name:    "missing dropoff address",
			mutate:  func(r *service.RequestRideRequest) { r.DropoffAddress = "" },
			wantErr: service.ErrInvalidLocation,
		},
		{
			name:    "unknown category",
			mutate:  func(r *service.RequestRideRequest) { r.Category = "PREMIUM" },
			wantErr: service.ErrInvalidCategory,
		},
		{
			name:    "unknown payment method",
			mutate:  func(r *service.RequestRideRequest) { r.PaymentMethod = "BARTER" },
			wantErr: service.ErrInvalidPaymentMethod,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := requestRideReq("p1")
			tc.mutate(&req)
			_, err := f.svc.RequestRide(context.Background(), req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAcceptRide_AssignsDriver(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	ride, err := f.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	accepted, err := f.svc.AcceptRide(ctx, ride.ID, "d1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != domain.RideStatusAccepted {
		t.Errorf("status = %s, want ACCEPTED", accepted.Status)
	}
	if accepted.DriverID != "d1" {
		t.Errorf("driver = %s, want d1", accepted.DriverID)
	}
	if !f.sink.Has(events.RideAccepted) {
		t.Error("expected RIDE_ACCEPTED event")
	}
}

func TestAcceptRide_ExactlyOneWinnerUnderContention(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	ctx := context.Background()

	const drivers = 20
	for i := 0; i < drivers; i++ {
		f.addDriver(fmt.Sprintf("d%d", i))
	}

	ride, err := f.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, drivers)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.AcceptRide(ctx, ride.ID, fmt.Sprintf("d%d", i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, service.ErrRideAlreadyAccepted):
			// Expected for losers.
		default:
			t.Errorf("driver d%d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	final := f.rides.GetRide(ride.ID)
	if final.Status != domain.RideStatusAccepted {
		t.Errorf("final status = %s, want ACCEPTED", final.Status)
	}
	if final.DriverID == "" {
		t.Error("expected a driver to be assigned")
	}
}

func TestAcceptRide_UnknownDriverRejected(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	ctx := context.Background()

	ride, err := f.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := f.svc.AcceptRide(ctx, ride.ID, "ghost"); err == nil {
		t.Error("expected error accepting with unregistered driver")
	}
}

func TestLifecycle_NoSkippedTransitions(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	ride, err := f.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	// Cannot start or complete a ride that was never accepted.
	if _, err := f.svc.StartRide(ctx, ride.ID, "d1"); !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("start on REQUESTED: got %v, want ErrInvalidTransition", err)
	}
	if _, err := f.svc.CompleteRide(ctx, ride.ID, "d1"); !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("complete on REQUESTED: got %v, want ErrInvalidTransition", err)
	}

	if _, err := f.svc.AcceptRide(ctx, ride.ID, "d1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Cannot complete before pickup.
	if _, err := f.svc.CompleteRide(ctx, ride.ID, "d1"); !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("complete on ACCEPTED: got %v, want ErrInvalidTransition", err)
	}

	// Accepting twice conflicts.
	if _, err := f.svc.AcceptRide(ctx, ride.ID, "d1"); !errors.Is(err, service.ErrRideAlreadyAccepted) {
		t.Errorf("double accept: got %v, want ErrRideAlreadyAccepted", err)
	}
}

func TestStartRide_OnlyAssignedDriver(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	f.addDriver("d2")
	ctx := context.Background()

	ride := f.requestAndDrive(t, "p1", "d1", domain.RideStatusAccepted)

	if _, err := f.svc.StartRide(ctx, ride.ID, "d2"); !errors.Is(err, service.ErrNotRideDriver) {
		t.Errorf("start by other driver: got %v, want ErrNotRideDriver", err)
	}

	started, err := f.svc.StartRide(ctx, ride.ID, "d1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != domain.RideStatusPickedUp {
		t.Errorf("status = %s, want PICKED_UP", started.Status)
	}
	if started.PickupTime.IsZero() {
		t.Error("expected pickup time to be stamped")
	}
}

func TestCompleteRide_StampsDropoffAndSettles(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	ride := f.requestAndDrive(t, "p1", "d1", domain.RideStatusPickedUp)

	resp, err := f.svc.CompleteRide(ctx, ride.ID, "d1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if resp.Ride.Status != domain.RideStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", resp.Ride.Status)
	}
	if resp.Ride.DropoffTime.IsZero() {
		t.Error("expected dropoff time to be stamped")
	}
	if resp.Settlement == nil || !resp.Settlement.Applied {
		t.Errorf("expected settlement applied, got %+v (err %v)", resp.Settlement, resp.SettlementErr)
	}
	if resp.Receipt == nil {
		t.Fatal("expected a receipt")
	}
	if resp.Receipt.TotalFare != ride.Fare {
		t.Errorf("receipt total = %v, want %v", resp.Receipt.TotalFare, ride.Fare)
	}
	if !f.sink.Has(events.RideCompleted) {
		t.Error("expected RIDE_COMPLETED event")
	}
}

func TestCancelRide_ParticipantsOnly(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	ride := f.requestAndDrive(t, "p1", "d1", domain.RideStatusAccepted)

	if _, err := f.svc.CancelRide(ctx, ride.ID, "stranger", ""); !errors.Is(err, service.ErrNotRideParticipant) {
		t.Errorf("cancel by stranger: got %v, want ErrNotRideParticipant", err)
	}

	cancelled, err := f.svc.CancelRide(ctx, ride.ID, "d1", "vehicle breakdown")
	if err != nil {
		t.Fatalf("cancel by driver: %v", err)
	}
	if cancelled.Status != domain.RideStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
	if cancelled.CancelReason != "vehicle breakdown" {
		t.Errorf("reason = %q", cancelled.CancelReason)
	}
	if cancelled.CancelledAt.IsZero() {
		t.Error("expected cancelled time to be stamped")
	}
	if !f.sink.Has(events.RideCancelled) {
		t.Error("expected RIDE_CANCELLED event")
	}
}

func TestCancelRide_TerminalRideConflicts(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	ride := f.requestAndDrive(t, "p1", "d1", domain.RideStatusCompleted)

	if _, err := f.svc.CancelRide(ctx, ride.ID, "p1", ""); !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("cancel completed ride: got %v, want ErrInvalidTransition", err)
	}

	// Cancelling a cancelled ride conflicts too.
	f2 := newRideFixture()
	f2.addPassenger("p1", 100)
	r2, err := f2.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f2.svc.CancelRide(ctx, r2.ID, "p1", ""); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := f2.svc.CancelRide(ctx, r2.ID, "p1", ""); !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("second cancel: got %v, want ErrInvalidTransition", err)
	}
}

func TestRateRide_Rules(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	ride := f.requestAndDrive(t, "p1", "d1", domain.RideStatusPickedUp)

	// Not completed yet.
	if _, err := f.svc.RateRide(ctx, ride.ID, "p1", 5); !errors.Is(err, service.ErrRideNotCompleted) {
		t.Errorf("rate before completion: got %v, want ErrRideNotCompleted", err)
	}

	if _, err := f.svc.CompleteRide(ctx, ride.ID, "d1"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Out-of-range ratings.
	for _, rating := range []int{0, -1, 6} {
		if _, err := f.svc.RateRide(ctx, ride.ID, "p1", rating); !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("rating %d: got %v, want ErrInvalidRating", rating, err)
		}
	}

	// Only the passenger may rate.
	if _, err := f.svc.RateRide(ctx, ride.ID, "d1", 4); !errors.Is(err, service.ErrNotRidePassenger) {
		t.Errorf("rate by driver: got %v, want ErrNotRidePassenger", err)
	}

	rated, err := f.svc.RateRide(ctx, ride.ID, "p1", 4)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.Rating != 4 {
		t.Errorf("rating = %d, want 4", rated.Rating)
	}

	// Ratings are set once.
	if _, err := f.svc.RateRide(ctx, ride.ID, "p1", 5); !errors.Is(err, service.ErrAlreadyRated) {
		t.Errorf("second rating: got %v, want ErrAlreadyRated", err)
	}
	if got := f.rides.GetRide(ride.ID).Rating; got != 4 {
		t.Errorf("stored rating = %d, want 4", got)
	}
}

func TestGetCurrentRide(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	ctx := context.Background()

	if _, err := f.svc.GetCurrentRide(ctx, "p1"); err == nil {
		t.Error("expected not found with no active ride")
	}

	ride, err := f.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	current, err := f.svc.GetCurrentRide(ctx, "p1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != ride.ID {
		t.Errorf("current ride = %s, want %s", current.ID, ride.ID)
	}
}

func TestHistoriesExcludeCancelledRides(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	completed := f.requestAndDrive(t, "p1", "d1", domain.RideStatusCompleted)

	cancelled, err := f.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.svc.CancelRide(ctx, cancelled.ID, "p1", ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	history, err := f.svc.GetPassengerHistory(ctx, "p1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ID != completed.ID {
		t.Errorf("history = %d rides, want only the completed one", len(history))
	}

	driverHistory, err := f.svc.GetDriverHistory(ctx, "d1")
	if err != nil {
		t.Fatalf("driver history: %v", err)
	}
	if len(driverHistory) != 1 {
		t.Errorf("driver history = %d rides, want 1", len(driverHistory))
	}
}

func TestAcceptRide_LockStoreFailureSurfaces(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	ride, err := f.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	f.lockStore.AcquireError = errors.New("redis down")
	if _, err := f.svc.AcceptRide(ctx, ride.ID, "d1"); !errors.Is(err, service.ErrUpstream) {
		t.Errorf("accept with failing lock store = %v, want ErrUpstream", err)
	}

	// Ride is untouched and acceptable once Redis recovers.
	f.lockStore.AcquireError = nil
	if _, err := f.svc.AcceptRide(ctx, ride.ID, "d1"); err != nil {
		t.Errorf("accept after recovery: %v", err)
	}
}

func TestCompleteRide_DurationCoversTrip(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	ride := f.requestAndDrive(t, "p1", "d1", domain.RideStatusPickedUp)

	// Backdate the pickup so the receipt shows a nonzero duration.
	stored := f.rides.GetRide(ride.ID)
	stored.PickupTime = time.Now().Add(-20 * time.Minute)

	resp, err := f.svc.CompleteRide(ctx, ride.ID, "d1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Receipt.Duration < 19*time.Minute {
		t.Errorf("duration = %v, want about 20m", resp.Receipt.Duration)
	}
}

func TestRateRide_SetOnceUnderContention(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")

	ride := f.requestAndDrive(t, "p1", "d1", domain.RideStatusCompleted)
	ctx := context.Background()

	const raters = 10
	var wg sync.WaitGroup
	errs := make([]error, raters)
	for i := 0; i < raters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.RateRide(ctx, ride.ID, "p1", 1+i%5)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, service.ErrAlreadyRated):
			// Expected for losers.
		default:
			t.Errorf("rater %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	final := f.rides.GetRide(ride.ID)
	if final.Rating < 1 || final.Rating > 5 {
		t.Errorf("final rating = %d, want a value in 1..5", final.Rating)
	}
}

func TestGetRideStatus_ServedFromCacheBetweenTransitions(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	ride, err := f.svc.RequestRide(ctx, requestRideReq("p1"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	first, err := f.svc.GetRideStatus(ctx, ride.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if first.Status != domain.RideStatusRequested {
		t.Fatalf("status = %s, want REQUESTED", first.Status)
	}
	if !f.cacheStore.HasRide(ride.ID) {
		t.Fatal("expected ride to be cached after the first read")
	}

	// Change the stored fare behind the cache's back. The next poll must
	// not see it, proving the read is served from cache.
	f.rides.GetRide(ride.ID).Fare = 999

	cached, err := f.svc.GetRideStatus(ctx, ride.ID)
	if err != nil {
		t.Fatalf("cached status: %v", err)
	}
	if cached.Fare != first.Fare {
		t.Errorf("cached fare = %.2f, want %.2f", cached.Fare, first.Fare)
	}

	// A transition invalidates the cached copy, so the next poll is fresh.
	if _, err := f.svc.AcceptRide(ctx, ride.ID, "d1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	fresh, err := f.svc.GetRideStatus(ctx, ride.ID)
	if err != nil {
		t.Fatalf("fresh status: %v", err)
	}
	if fresh.Status != domain.RideStatusAccepted {
		t.Errorf("fresh status = %s, want ACCEPTED", fresh.Status)
	}
}
