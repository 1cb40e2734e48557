package tests

import (
	"context"
	"errors"
	"testing"

	"ridehail/internal/domain"
	"ridehail/internal/events"
	"ridehail/internal/service"
)

// completeWithMethod drives a fresh ride to PICKED_UP with the given
// payment method, then completes it and returns the completion response.
func completeWithMethod(t *testing.T, f *rideFixture, method domain.PaymentType) *service.CompleteRideResponse {
	t.Helper()
	ctx := context.Background()

	req := requestRideReq("p1")
	req.PaymentMethod = method
	ride, err := f.svc.RequestRide(ctx, req)
	if err != nil {
		t.Fatalf("RequestRide: %v", err)
	}
	if _, err := f.svc.AcceptRide(ctx, ride.ID, "d1"); err != nil {
		t.Fatalf("AcceptRide: %v", err)
	}
	if _, err := f.svc.StartRide(ctx, ride.ID, "d1"); err != nil {
		t.Fatalf("StartRide: %v", err)
	}

	resp, err := f.svc.CompleteRide(ctx, ride.ID, "d1")
	if err != nil {
		t.Fatalf("CompleteRide: %v", err)
	}
	return resp
}

func TestSettlement_WalletMovesMoneyAtomically(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 20.00)
	f.addDriver("d1")

	resp := completeWithMethod(t, f, domain.PaymentTypeWallet)

	if !resp.Settlement.Applied {
		t.Fatalf("settlement not applied: %+v (err %v)", resp.Settlement, resp.SettlementErr)
	}

	// Fare is 15: 5 base + 5km at the standard rate.
	if got := f.passengers.GetPassenger("p1").WalletBalance; got != 5.00 {
		t.Errorf("wallet = %v, want 5.00", got)
	}
	if got := f.drivers.GetDriver("d1").Earnings; got != 15.00 {
		t.Errorf("earnings = %v, want 15.00", got)
	}

	payment := f.payments.GetPayment(resp.Settlement.Payment.ID)
	if payment.Status != domain.PaymentStatusCompleted {
		t.Errorf("payment status = %s, want COMPLETED", payment.Status)
	}
	if !f.sink.Has(events.PaymentCompleted) {
		t.Error("expected PAYMENT_COMPLETED event")
	}
}

func TestSettlement_InsufficientWalletLeavesLedgersUntouched(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 5.00) // fare will be 15
	f.addDriver("d1")

	resp := completeWithMethod(t, f, domain.PaymentTypeWallet)

	// The ride completes regardless; the failed settlement rides along.
	if resp.Ride.Status != domain.RideStatusCompleted {
		t.Errorf("ride status = %s, want COMPLETED", resp.Ride.Status)
	}
	if !errors.Is(resp.SettlementErr, service.ErrInsufficientFunds) {
		t.Errorf("settlement err = %v, want ErrInsufficientFunds", resp.SettlementErr)
	}
	if resp.Settlement == nil || resp.Settlement.Applied {
		t.Error("expected settlement not applied")
	}

	// Neither ledger moved.
	if got := f.passengers.GetPassenger("p1").WalletBalance; got != 5.00 {
		t.Errorf("wallet = %v, want 5.00 untouched", got)
	}
	if got := f.drivers.GetDriver("d1").Earnings; got != 0 {
		t.Errorf("earnings = %v, want 0", got)
	}

	// Payment stays PENDING for a later retry.
	payment := f.payments.GetPayment(resp.Settlement.Payment.ID)
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("payment status = %s, want PENDING", payment.Status)
	}
	if !f.sink.Has(events.PaymentFailed) {
		t.Error("expected PAYMENT_FAILED event")
	}
}

func TestSettlement_RetryAfterTopUpSucceeds(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 5.00)
	f.addDriver("d1")
	ctx := context.Background()

	resp := completeWithMethod(t, f, domain.PaymentTypeWallet)
	if resp.Settlement.Applied {
		t.Fatal("expected initial settlement to fail")
	}
	rideID := resp.Ride.ID

	// Top up, then retry through the payment service.
	if err := f.passengers.CreditWallet(ctx, "p1", 50.00); err != nil {
		t.Fatalf("credit: %v", err)
	}

	result, err := f.paymentSvc.ProcessPayment(ctx, rideID, "p1")
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if !result.Applied {
		t.Fatalf("retry not applied: %+v", result)
	}

	if got := f.passengers.GetPassenger("p1").WalletBalance; got != 40.00 {
		t.Errorf("wallet = %v, want 40.00", got)
	}
	if got := f.drivers.GetDriver("d1").Earnings; got != 15.00 {
		t.Errorf("earnings = %v, want 15.00", got)
	}
}

func TestSettlement_CardChargesGatewayAndCreditsDriver(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 0) // card rides never touch the wallet
	f.addDriver("d1")

	resp := completeWithMethod(t, f, domain.PaymentTypeCreditCard)

	if !resp.Settlement.Applied {
		t.Fatalf("settlement not applied: %v", resp.SettlementErr)
	}
	if f.gateway.ChargeCallCount != 1 {
		t.Errorf("gateway charges = %d, want 1", f.gateway.ChargeCallCount)
	}

	payment := f.payments.GetPayment(resp.Settlement.Payment.ID)
	if payment.Status != domain.PaymentStatusCompleted {
		t.Errorf("payment status = %s, want COMPLETED", payment.Status)
	}
	if payment.ProcessorRef == "" {
		t.Error("expected processor reference from gateway")
	}

	if got := f.passengers.GetPassenger("p1").WalletBalance; got != 0 {
		t.Errorf("wallet = %v, want untouched", got)
	}
	if got := f.drivers.GetDriver("d1").Earnings; got != 15.00 {
		t.Errorf("earnings = %v, want 15.00", got)
	}
}

func TestSettlement_CardDeclineMarksPaymentFailed(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 0)
	f.addDriver("d1")
	f.gateway.Decline = true

	resp := completeWithMethod(t, f, domain.PaymentTypeCreditCard)

	if resp.Ride.Status != domain.RideStatusCompleted {
		t.Errorf("ride status = %s, want COMPLETED", resp.Ride.Status)
	}
	if !errors.Is(resp.SettlementErr, service.ErrPaymentFailed) {
		t.Errorf("settlement err = %v, want ErrPaymentFailed", resp.SettlementErr)
	}

	payment := f.payments.GetPayment(resp.Settlement.Payment.ID)
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("payment status = %s, want FAILED", payment.Status)
	}
	if got := f.drivers.GetDriver("d1").Earnings; got != 0 {
		t.Errorf("earnings = %v, want 0", got)
	}
	if !f.sink.Has(events.PaymentFailed) {
		t.Error("expected PAYMENT_FAILED event")
	}
}

func TestSettlement_CashCreditsDriverOnly(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 3.00)
	f.addDriver("d1")

	resp := completeWithMethod(t, f, domain.PaymentTypeCash)

	if !resp.Settlement.Applied {
		t.Fatalf("settlement not applied: %v", resp.SettlementErr)
	}
	// Cash is collected in person: wallet untouched, earnings recorded.
	if got := f.passengers.GetPassenger("p1").WalletBalance; got != 3.00 {
		t.Errorf("wallet = %v, want untouched", got)
	}
	if got := f.drivers.GetDriver("d1").Earnings; got != 15.00 {
		t.Errorf("earnings = %v, want 15.00", got)
	}
	if f.gateway.ChargeCallCount != 0 {
		t.Errorf("gateway charges = %d, want 0", f.gateway.ChargeCallCount)
	}
}

func TestSettlement_IsIdempotent(t *testing.T) {
	t.Parallel()

	f := newRideFixture()
	f.addPassenger("p1", 100)
	f.addDriver("d1")
	ctx := context.Background()

	resp := completeWithMethod(t, f, domain.PaymentTypeWallet)
	if !resp.Settlement.Applied {
		t.Fatalf("settlement not applied: %v", resp.SettlementErr)
	}

	// Settling the same ride again must not move money twice.
	ride := f.rides.GetRide(resp.Ride.ID)
	again, err := f.settlement.Settle(ctx, ride)
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if again.Applied {
		t.Error("second settlement applied, want already-settled")
	}

	if got := f.passengers.GetPassenger("p1").WalletBalance; got != 85.00 {
		t.Errorf("wallet = %v, want 85.00", got)
	}
	if got := f.drivers.GetDriver("d1").Earnings; got != 15.00 {
		t.Errorf("earnings = %v, want 15.00", got)
	}
}
