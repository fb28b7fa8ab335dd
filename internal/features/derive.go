package features

import "math"

// Site holds the raw geographic and economic attributes of one location,
// as ingested. Both views store this shape; the label lives on LabeledSite.
type Site struct {
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	FootTraffic     float64 `json:"foot_traffic"`
	RentPerSqm      float64 `json:"rent_per_sqm"`
	Competition     float64 `json:"competition"`
	MedianIncome    float64 `json:"median_income"`
	OfficeDensity   float64 `json:"office_density"`
	WeekendActivity float64 `json:"weekend_activity"`
	EventsPerMonth  float64 `json:"events_per_month"`
	CoffeePrice     float64 `json:"coffee_price"`
	PromoSpend      float64 `json:"promo_spend"`
}

// LabeledSite is a Site with its observed historical profit. Exists only in
// the training view.
type LabeledSite struct {
	Site
	Profit float64 `json:"profit"`
}

// Vector computes the full ordered feature vector for one site: the raw
// attributes followed by the derived interaction terms. The same function
// feeds both the training and the candidate view, which is what makes a
// feature named "demand_adj" mean the same quantity in both.
func Vector(s Site) []float64 {
	return []float64{
		s.FootTraffic,
		s.RentPerSqm,
		s.Competition,
		s.MedianIncome,
		s.OfficeDensity,
		s.WeekendActivity,
		s.EventsPerMonth,
		s.CoffeePrice,
		s.PromoSpend,
		s.FootTraffic * s.MedianIncome / 1000,          // demand_adj
		s.FootTraffic * s.WeekendActivity,              // wknd_traffic
		s.CoffeePrice * 1000 / s.MedianIncome,          // price_income
		s.PromoSpend / (s.Competition + 1),             // promo_comp_adj
	}
}

// CheckVector verifies every value in a feature vector is finite. row is the
// zero-based position of the record in its view, used for error context.
func CheckVector(row int, vals []float64) error {
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &NumericError{Row: row, Column: Names[i], Reason: "non-finite value"}
		}
	}
	return nil
}

// CheckLabel verifies the training label is finite.
func CheckLabel(row int, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &NumericError{Row: row, Column: colProfit, Reason: "non-finite value"}
	}
	return nil
}
