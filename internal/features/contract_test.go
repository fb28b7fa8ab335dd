package features

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNames_OrderAndCardinality(t *testing.T) {
	if len(Names) != 13 {
		t.Fatalf("expected 13 features, got %d", len(Names))
	}

	// Raw columns first, derived terms after, in declaration order.
	want := []string{
		"foot_traffic", "rent_per_sqm", "competition", "median_income",
		"office_density", "weekend_activity", "events_per_month",
		"coffee_price", "promo_spend",
		"demand_adj", "wknd_traffic", "price_income", "promo_comp_adj",
	}
	if !reflect.DeepEqual(Names, want) {
		t.Errorf("feature order mismatch:\n got %v\nwant %v", Names, want)
	}
}

func TestRequiredColumns(t *testing.T) {
	train := RequiredTrainColumns()
	if len(train) != 12 {
		t.Errorf("expected 12 training columns, got %d: %v", len(train), train)
	}
	if train[len(train)-1] != "profit" {
		t.Errorf("expected profit as last training column, got %q", train[len(train)-1])
	}

	cand := RequiredCandidateColumns()
	if len(cand) != 11 {
		t.Errorf("expected 11 candidate columns, got %d: %v", len(cand), cand)
	}
	for _, c := range cand {
		if c == "profit" {
			t.Error("candidate columns must not require profit")
		}
	}
}

func TestValidateColumns(t *testing.T) {
	required := RequiredTrainColumns()

	if err := ValidateColumns("locations_train", required, required); err != nil {
		t.Fatalf("complete header rejected: %v", err)
	}

	// Extra columns are tolerated.
	have := append([]string{"extra_col"}, required...)
	if err := ValidateColumns("locations_train", have, required); err != nil {
		t.Fatalf("header with extra column rejected: %v", err)
	}
}

func TestValidateColumns_MissingSorted(t *testing.T) {
	have := []string{"lat", "lon", "foot_traffic", "median_income", "office_density",
		"weekend_activity", "events_per_month", "coffee_price", "promo_spend", "profit"}

	err := ValidateColumns("locations_train", have, RequiredTrainColumns())
	if err == nil {
		t.Fatal("expected contract error for missing columns")
	}

	var cerr *ContractError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ContractError, got %T", err)
	}
	want := []string{"competition", "rent_per_sqm"}
	if !reflect.DeepEqual(cerr.Missing, want) {
		t.Errorf("missing columns = %v, want sorted %v", cerr.Missing, want)
	}
	if cerr.View != "locations_train" {
		t.Errorf("view = %q, want locations_train", cerr.View)
	}
}

func TestValidateSchema(t *testing.T) {
	if err := ValidateSchema("features_candidates", Names, Names); err != nil {
		t.Fatalf("identical schema rejected: %v", err)
	}

	// Same names, different order: still a violation.
	swapped := append([]string{}, Names...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if err := ValidateSchema("features_candidates", Names, swapped); err == nil {
		t.Error("reordered schema accepted")
	}

	// Shorter set: violation.
	if err := ValidateSchema("features_candidates", Names, Names[:12]); err == nil {
		t.Error("truncated schema accepted")
	}

	var cerr *ContractError
	err := ValidateSchema("features_candidates", Names, Names[:12])
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ContractError, got %T", err)
	}
	if len(cerr.Expected) != 13 || len(cerr.Actual) != 12 {
		t.Errorf("error should carry both feature sets, got %d vs %d", len(cerr.Expected), len(cerr.Actual))
	}
}

func TestVector_DerivedTerms(t *testing.T) {
	s := Site{
		Lat: 52.5, Lon: 13.4,
		FootTraffic: 1200, RentPerSqm: 35, Competition: 3,
		MedianIncome: 4200, OfficeDensity: 18, WeekendActivity: 0.6,
		EventsPerMonth: 4, CoffeePrice: 3.5, PromoSpend: 800,
	}

	v := Vector(s)
	if len(v) != len(Names) {
		t.Fatalf("vector length %d != %d features", len(v), len(Names))
	}

	const eps = 1e-12
	checks := map[string]float64{
		"demand_adj":     1200 * 4200 / 1000.0,
		"wknd_traffic":   1200 * 0.6,
		"price_income":   3.5 * 1000 / 4200,
		"promo_comp_adj": 800.0 / 4,
	}
	for name, want := range checks {
		got := v[indexOf(t, name)]
		if math.Abs(got-want) > eps {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestCheckVector_NonFinite(t *testing.T) {
	s := Site{FootTraffic: 100, MedianIncome: 0, CoffeePrice: 3} // price_income divides by zero
	v := Vector(s)

	err := CheckVector(7, v)
	if err == nil {
		t.Fatal("expected numeric error for infinite derived value")
	}
	var nerr *NumericError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NumericError, got %T", err)
	}
	if nerr.Row != 7 || nerr.Column != "price_income" {
		t.Errorf("error context = row %d column %q, want row 7 column price_income", nerr.Row, nerr.Column)
	}
}

func TestCheckLabel(t *testing.T) {
	if err := CheckLabel(0, 1234.5); err != nil {
		t.Errorf("finite label rejected: %v", err)
	}
	if err := CheckLabel(0, math.NaN()); err == nil {
		t.Error("NaN label accepted")
	}
	if err := CheckLabel(0, math.Inf(-1)); err == nil {
		t.Error("infinite label accepted")
	}
}

func indexOf(t *testing.T, name string) int {
	t.Helper()
	for i, n := range Names {
		if n == name {
			return i
		}
	}
	t.Fatalf("feature %q not in contract", name)
	return -1
}
