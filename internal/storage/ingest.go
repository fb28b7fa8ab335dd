package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"site-scout/internal/features"
)

// ReadTrainingCSV parses a flat training CSV into labeled site records.
// The header is validated against the full required column set before a
// single row is parsed; a rejected file therefore never reaches the store.
func ReadTrainingCSV(r io.Reader) ([]features.LabeledSite, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := features.ValidateColumns("locations_train", header, features.RequiredTrainColumns()); err != nil {
		return nil, err
	}

	idx := columnIndex(header)
	sites := make([]features.LabeledSite, 0, len(rows))
	for i, row := range rows {
		var site features.LabeledSite
		if err := fillSite(&site.Site, idx, i, row); err != nil {
			return nil, err
		}
		profit, err := parseCell(idx, i, row, "profit")
		if err != nil {
			return nil, err
		}
		site.Profit = profit
		sites = append(sites, site)
	}
	return sites, nil
}

// ReadCandidateCSV parses a flat candidate CSV into unlabeled site records.
func ReadCandidateCSV(r io.Reader) ([]features.Site, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := features.ValidateColumns("locations_candidates", header, features.RequiredCandidateColumns()); err != nil {
		return nil, err
	}

	idx := columnIndex(header)
	sites := make([]features.Site, 0, len(rows))
	for i, row := range rows {
		var site features.Site
		if err := fillSite(&site, idx, i, row); err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, nil
}

func readTable(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err = cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows, err = cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read CSV rows: %w", err)
	}
	return header, rows, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

func fillSite(site *features.Site, idx map[string]int, row int, cells []string) error {
	fields := []struct {
		col string
		dst *float64
	}{
		{"lat", &site.Lat},
		{"lon", &site.Lon},
		{"foot_traffic", &site.FootTraffic},
		{"rent_per_sqm", &site.RentPerSqm},
		{"competition", &site.Competition},
		{"median_income", &site.MedianIncome},
		{"office_density", &site.OfficeDensity},
		{"weekend_activity", &site.WeekendActivity},
		{"events_per_month", &site.EventsPerMonth},
		{"coffee_price", &site.CoffeePrice},
		{"promo_spend", &site.PromoSpend},
	}
	for _, f := range fields {
		v, err := parseCell(idx, row, cells, f.col)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

// parseCell converts one cell to a float. Blank cells are the null case the
// contract forbids: a hard error, not an implicit default.
func parseCell(idx map[string]int, row int, cells []string, col string) (float64, error) {
	pos := idx[col]
	if pos >= len(cells) {
		return 0, &features.NumericError{Row: row, Column: col, Reason: "missing cell"}
	}
	raw := strings.TrimSpace(cells[pos])
	if raw == "" {
		return 0, &features.NumericError{Row: row, Column: col, Reason: "empty value"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &features.NumericError{Row: row, Column: col, Reason: fmt.Sprintf("not a number: %q", raw)}
	}
	return v, nil
}
