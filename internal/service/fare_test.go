package service

import (
	"math"
	"testing"

	"ridehail/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFareCalculator_Formula(t *testing.T) {
	t.Parallel()

	calc := NewFareCalculator()

	testCases := []struct {
		name       string
		distanceKm float64
		category   domain.RideCategory
		surge      float64
		want       float64
	}{
		{
			name:       "standard 10km no surge",
			distanceKm: 10,
			category:   domain.RideCategoryStandard,
			surge:      1.0,
			want:       25.0, // 5 + 10*2
		},
		{
			name:       "standard 10km with 2x surge",
			distanceKm: 10,
			category:   domain.RideCategoryStandard,
			surge:      2.0,
			want:       50.0,
		},
		{
			name:       "pool 10km no surge",
			distanceKm: 10,
			category:   domain.RideCategoryPool,
			surge:      1.0,
			want:       20.0, // 5 + 10*1.5
		},
		{
			name:       "luxury 10km no surge",
			distanceKm: 10,
			category:   domain.RideCategoryLuxury,
			surge:      1.0,
			want:       40.0, // 5 + 10*3.5
		},
		{
			name:       "zero distance charges base fare",
			distanceKm: 0,
			category:   domain.RideCategoryStandard,
			surge:      1.0,
			want:       5.0,
		},
		{
			name:       "negative distance clamps to zero",
			distanceKm: -3,
			category:   domain.RideCategoryStandard,
			surge:      1.0,
			want:       5.0,
		},
		{
			name:       "surge below one clamps to one",
			distanceKm: 10,
			category:   domain.RideCategoryStandard,
			surge:      0.5,
			want:       25.0,
		},
		{
			name:       "surge applies to base fare too",
			distanceKm: 0,
			category:   domain.RideCategoryStandard,
			surge:      1.5,
			want:       7.5,
		},
		{
			name:       "unknown category prices at standard rate",
			distanceKm: 10,
			category:   domain.RideCategory("SPACESHIP"),
			surge:      1.0,
			want:       25.0,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := calc.Calculate(tc.distanceKm, tc.category, tc.surge)
			if !almostEqual(got, tc.want) {
				t.Errorf("Calculate(%v, %s, %v) = %v, want %v",
					tc.distanceKm, tc.category, tc.surge, got, tc.want)
			}
		})
	}
}

func TestFareCalculator_SurgeIsMultiplicative(t *testing.T) {
	t.Parallel()

	calc := NewFareCalculator()

	for _, surge := range []float64{1.0, 1.25, 1.5, 2.0} {
		base := calc.Calculate(8, domain.RideCategoryPool, 1.0)
		surged := calc.Calculate(8, domain.RideCategoryPool, surge)
		if !almostEqual(surged, base*surge) {
			t.Errorf("surge %v: got %v, want %v", surge, surged, base*surge)
		}
	}
}

func TestFareCalculator_Deterministic(t *testing.T) {
	t.Parallel()

	calc := NewFareCalculator()

	first := calc.Calculate(12.34, domain.RideCategoryLuxury, 1.5)
	for i := 0; i < 100; i++ {
		if got := calc.Calculate(12.34, domain.RideCategoryLuxury, 1.5); got != first {
			t.Fatalf("iteration %d: got %v, want %v", i, got, first)
		}
	}
}

func TestValidateCategory(t *testing.T) {
	t.Parallel()

	if _, err := ValidateCategory("STANDARD"); err != nil {
		t.Errorf("STANDARD rejected: %v", err)
	}
	if got, err := ValidateCategory(""); err != nil || got != domain.RideCategoryStandard {
		t.Errorf("empty category: got (%v, %v), want STANDARD default", got, err)
	}
	if _, err := ValidateCategory("PREMIUM"); err != ErrInvalidCategory {
		t.Errorf("PREMIUM: got %v, want ErrInvalidCategory", err)
	}
}

func TestValidatePaymentMethod(t *testing.T) {
	t.Parallel()

	for _, method := range []string{"CREDIT_CARD", "WALLET", "CASH"} {
		if _, err := ValidatePaymentMethod(method); err != nil {
			t.Errorf("%s rejected: %v", method, err)
		}
	}
	if got, err := ValidatePaymentMethod(""); err != nil || got != domain.PaymentTypeWallet {
		t.Errorf("empty method: got (%v, %v), want WALLET default", got, err)
	}
	if _, err := ValidatePaymentMethod("BITCOIN"); err != ErrInvalidPaymentMethod {
		t.Errorf("BITCOIN: got %v, want ErrInvalidPaymentMethod", err)
	}
}
