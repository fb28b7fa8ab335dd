// Package features defines the feature contract shared by the training and
// scoring stages: the fixed, ordered set of numeric predictors, the derived
// interaction terms, and the schema validation both stages run before
// touching a model.
//
// The contract is deliberately explicit. A scaler fitted against one feature
// ordering produces silent nonsense when applied to another, so every stage
// validates the exact column set it was handed instead of trusting position.
package features

import (
	"fmt"
	"sort"
)

// Raw location attributes as ingested. Order matters: it is the prefix of
// the full feature vector.
var rawColumns = []string{
	"foot_traffic",
	"rent_per_sqm",
	"competition",
	"median_income",
	"office_density",
	"weekend_activity",
	"events_per_month",
	"coffee_price",
	"promo_spend",
}

// Interaction terms computed by Vector. Appended after the raw columns.
var derivedColumns = []string{
	"demand_adj",
	"wknd_traffic",
	"price_income",
	"promo_comp_adj",
}

const (
	colLat    = "lat"
	colLon    = "lon"
	colProfit = "profit"
)

// Names is the full ordered feature set. Training fits against exactly this
// list and embeds it in the persisted artifact; scoring refuses to run
// unless the candidate view exposes the same list.
var Names = append(append([]string{}, rawColumns...), derivedColumns...)

// RequiredTrainColumns lists the columns a training CSV must carry.
func RequiredTrainColumns() []string {
	cols := append([]string{colLat, colLon}, rawColumns...)
	return append(cols, colProfit)
}

// RequiredCandidateColumns lists the columns a candidate CSV must carry.
func RequiredCandidateColumns() []string {
	return append([]string{colLat, colLon}, rawColumns...)
}

// ContractError reports a structural mismatch between the expected and
// actual schema: missing ingest columns, or a feature set that differs from
// the one a persisted artifact was fitted against. Always fatal.
type ContractError struct {
	View     string   // which view or artifact the check ran against
	Missing  []string // sorted missing column names, if any
	Expected []string // expected ordered feature set, for set mismatches
	Actual   []string // actual ordered feature set, for set mismatches
}

func (e *ContractError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("feature contract violation in %s: missing columns %v", e.View, e.Missing)
	}
	return fmt.Sprintf("feature contract violation in %s: expected features %v, got %v", e.View, e.Expected, e.Actual)
}

// NumericError reports a non-finite or unparseable value surfacing in a
// required feature or label. Propagated, never coerced.
type NumericError struct {
	Row    int
	Column string
	Reason string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric error at row %d column %q: %s", e.Row, e.Column, e.Reason)
}

// ValidateColumns checks that every required column is present in have.
// On failure the returned ContractError carries the full sorted list of
// missing names so the operator can fix the input in one pass.
func ValidateColumns(view string, have, required []string) error {
	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[c] = true
	}

	var missing []string
	for _, c := range required {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &ContractError{View: view, Missing: missing}
}

// ValidateSchema checks exact equality, names and order both, between the
// feature set an artifact was fitted against and the one a view exposes.
func ValidateSchema(view string, expected, actual []string) error {
	if len(expected) == len(actual) {
		match := true
		for i := range expected {
			if expected[i] != actual[i] {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}
	return &ContractError{
		View:     view,
		Expected: append([]string{}, expected...),
		Actual:   append([]string{}, actual...),
	}
}
