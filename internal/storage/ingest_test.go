package storage

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-scout/internal/features"
)

const trainHeader = "lat,lon,foot_traffic,rent_per_sqm,competition,median_income,office_density,weekend_activity,events_per_month,coffee_price,promo_spend,profit"

const trainCSV = trainHeader + "\n" +
	"52.50,13.40,1200,35.5,3,4200,18,0.6,4,3.5,800,15000\n" +
	"52.51,13.41,900,28.0,5,3800,12,0.4,2,3.2,500,9000\n"

func TestReadTrainingCSV(t *testing.T) {
	sites, err := ReadTrainingCSV(strings.NewReader(trainCSV))
	require.NoError(t, err)
	require.Len(t, sites, 2)

	assert.Equal(t, 52.50, sites[0].Lat)
	assert.Equal(t, 1200.0, sites[0].FootTraffic)
	assert.Equal(t, 15000.0, sites[0].Profit)
	assert.Equal(t, 9000.0, sites[1].Profit)
}

func TestReadTrainingCSV_MissingColumn(t *testing.T) {
	// Same file without rent_per_sqm.
	csv := "lat,lon,foot_traffic,competition,median_income,office_density,weekend_activity,events_per_month,coffee_price,promo_spend,profit\n" +
		"52.50,13.40,1200,3,4200,18,0.6,4,3.5,800,15000\n"

	_, err := ReadTrainingCSV(strings.NewReader(csv))
	require.Error(t, err)

	var cerr *features.ContractError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"rent_per_sqm"}, cerr.Missing)
	assert.Equal(t, "locations_train", cerr.View)
}

func TestReadTrainingCSV_RejectedFileNeverReachesStore(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	csv := "lat,lon\n52.5,13.4\n"
	_, err = ReadTrainingCSV(strings.NewReader(csv))
	require.Error(t, err)

	// Nothing was ingested, so the view must not exist.
	_, err = store.TrainingSites()
	assert.Error(t, err)
}

func TestReadTrainingCSV_EmptyCell(t *testing.T) {
	csv := trainHeader + "\n" +
		"52.50,13.40,1200,,3,4200,18,0.6,4,3.5,800,15000\n"

	_, err := ReadTrainingCSV(strings.NewReader(csv))
	var nerr *features.NumericError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "rent_per_sqm", nerr.Column)
	assert.Equal(t, 0, nerr.Row)
}

func TestReadTrainingCSV_NonNumericCell(t *testing.T) {
	csv := trainHeader + "\n" +
		"52.50,13.40,1200,lots,3,4200,18,0.6,4,3.5,800,15000\n"

	var nerr *features.NumericError
	_, err := ReadTrainingCSV(strings.NewReader(csv))
	require.ErrorAs(t, err, &nerr)
}

func TestReadCandidateCSV(t *testing.T) {
	csv := "lat,lon,foot_traffic,rent_per_sqm,competition,median_income,office_density,weekend_activity,events_per_month,coffee_price,promo_spend\n" +
		"52.52,13.42,1100,33,2,4100,20,0.7,5,3.6,650\n"

	sites, err := ReadCandidateCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, 1100.0, sites[0].FootTraffic)
}

func TestReadCandidateCSV_ProfitNotRequired(t *testing.T) {
	// A candidate file that happens to carry profit is fine; the column is
	// simply ignored.
	sites, err := ReadCandidateCSV(strings.NewReader(trainCSV))
	require.NoError(t, err)
	assert.Len(t, sites, 2)
}

func TestOpenSource_File(t *testing.T) {
	rc, err := OpenSource("testdata_missing.csv", time.Second)
	assert.Error(t, err)
	assert.Nil(t, rc)
}

func TestOpenSource_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(trainCSV))
	}))
	defer srv.Close()

	rc, err := OpenSource(srv.URL+"/locations_train.csv", 5*time.Second)
	require.NoError(t, err)
	defer rc.Close()

	sites, err := ReadTrainingCSV(rc)
	require.NoError(t, err)
	assert.Len(t, sites, 2)
}

func TestOpenSource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := OpenSource(srv.URL+"/nope.csv", 5*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
