package server

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"justapengu.in/lapeda/pkg/eda"
	"justapengu.in/lapeda/pkg/features"
	"justapengu.in/lapeda/pkg/laptable"
	"justapengu.in/lapeda/pkg/sessioncleaner"
)

const sessionCSV = `Session,Stint,LapNumber,LapTime,TyreLife,Compound
FP1,1,1,0 days 00:01:30.100000,1,SOFT
FP1,1,2,0 days 00:01:31.000000,2,SOFT
FP1,2,3,0 days 00:01:35.500000,1,HARD
`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)

	builder, err := features.NewBuilder(logger)

	if err != nil {
		t.Fatal(err)
	}

	h := NewHTTP(":0", sessioncleaner.New(logger, nil), builder, logger)

	server := httptest.NewServer(h.Router())
	t.Cleanup(server.Close)

	return server
}

func post(t *testing.T, url, accept string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, strings.NewReader(sessionCSV))

	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "text/csv")

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := http.DefaultClient.Do(req)

	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		resp.Body.Close()
	})

	return resp
}

func TestClean(t *testing.T) {
	server := testServer(t)

	resp := post(t, server.URL+"/api/clean?delta_from_best=2", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if cutoff := resp.Header.Get("X-Cutoff-Seconds"); cutoff != "92.100" {
		t.Errorf("expected cutoff 92.100, got %s", cutoff)
	}

	table, err := laptable.ReadCSV(resp.Body)

	if err != nil {
		t.Fatal(err)
	}

	if table.Len() != 2 || !table.Has(laptable.ColumnLapTimeS) {
		t.Errorf("expected 2 laps with LapTime_s, got %d", table.Len())
	}
}

func TestCleanRequiresCutoff(t *testing.T) {
	server := testServer(t)

	if resp := post(t, server.URL+"/api/clean", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	if resp := post(t, server.URL+"/api/clean?laptime_max_s=fast", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPrepareJSON(t *testing.T) {
	server := testServer(t)

	resp := post(t, server.URL+"/api/prepare?laptime_max_s=95", "application/json")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rows []map[string]interface{}

	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if rows[1][features.StintLapNorm] != 1.0 || rows[0][features.CompoundOrder] != 0.0 {
		t.Errorf("unexpected features: %v", rows)
	}
}

func TestFeatures(t *testing.T) {
	server := testServer(t)

	resp := post(t, server.URL+"/api/features", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	table, err := laptable.ReadCSV(resp.Body)

	if err != nil {
		t.Fatal(err)
	}

	if table.Len() != 3 || !table.Has(features.StintLen) || table.Has(laptable.ColumnLapTimeS) {
		t.Errorf("unexpected columns: %v", table.Columns())
	}
}

func TestSummary(t *testing.T) {
	server := testServer(t)

	resp := post(t, server.URL+"/api/summary?by=Compound", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var summaries []eda.GroupSummary

	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		t.Fatal(err)
	}

	if len(summaries) != 2 || summaries[0].Key != "SOFT" || summaries[0].Laps != 2 {
		t.Errorf("unexpected summaries: %+v", summaries)
	}
}

func TestMetrics(t *testing.T) {
	server := testServer(t)

	post(t, server.URL+"/api/clean?delta_from_best=2", "")

	resp, err := http.Get(server.URL + "/metrics")

	if err != nil {
		t.Fatal(err)
	}

	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)

	if err != nil {
		t.Fatal(err)
	}

	for _, metric := range []string{"lapeda_laps_received_total 3", "lapeda_laps_removed_total 1", `lapeda_requests_total{operation="clean",outcome="ok"} 1`} {
		if !strings.Contains(string(body), metric) {
			t.Errorf("expected %q in metrics output", metric)
		}
	}
}
