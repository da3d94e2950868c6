package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"normalizer/internal/analysis"
	"normalizer/internal/normalize"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(NewHandler(nil), nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const studentRecords = `[
	{"sid": 1, "sname": "Al",  "did": "d1", "dname": "Eng"},
	{"sid": 2, "sname": "Bea", "did": "d1", "dname": "Eng"},
	{"sid": 3, "sname": "Cy",  "did": "d2", "dname": "Ops"}
]`

func TestHealth(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestDetect(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/detect", `{"records": `+studentRecords+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var res analysis.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Rows != 3 {
		t.Errorf("rows = %d, want 3", res.Rows)
	}
	found := false
	for _, fd := range res.Dependencies {
		if fd.String() == "did -> dname" {
			found = true
		}
	}
	if !found {
		t.Errorf("did -> dname not detected; got %v", res.Dependencies)
	}
}

func TestDetectRejectsBadRequests(t *testing.T) {
	srv := testServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing records", `{}`},
		{"scalar records", `{"records": 42}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/detect", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestAssess(t *testing.T) {
	srv := testServer(t)

	body := `{
		"columns": ["sid", "sname", "did", "dname"],
		"fds": [
			{"determinant": ["sid"], "dependent": ["did", "dname", "sname"], "confidence": 1, "status": "confirmed"},
			{"determinant": ["did"], "dependent": ["dname"], "confidence": 1, "status": "confirmed"}
		]
	}`
	resp := postJSON(t, srv.URL+"/api/assess", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var report normalize.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Classification != "2NF" {
		t.Errorf("classification = %s, want 2NF", report.Classification)
	}
}

func TestAssessRejectsUnknownColumn(t *testing.T) {
	srv := testServer(t)

	body := `{
		"columns": ["a"],
		"fds": [{"determinant": ["ghost"], "dependent": ["a"], "status": "confirmed"}]
	}`
	resp := postJSON(t, srv.URL+"/api/assess", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPlan(t *testing.T) {
	srv := testServer(t)

	body := `{
		"records": ` + studentRecords + `,
		"fds": [
			{"determinant": ["sid"], "dependent": ["did", "dname", "sname"], "confidence": 1, "status": "auto_confirmed"},
			{"determinant": ["did"], "dependent": ["dname"], "confidence": 0.97, "status": "needs_review"}
		],
		"decisions": [
			{"determinant": ["did"], "dependent": ["dname"], "confirm": true}
		],
		"target": "3NF"
	}`
	resp := postJSON(t, srv.URL+"/api/plan", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var res struct {
		Plan    *normalize.Plan `json:"plan"`
		SQL     string          `json:"sql"`
		Mermaid string          `json:"mermaid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Plan == nil || len(res.Plan.Relations) != 2 {
		t.Fatalf("plan = %+v, want 2 relations", res.Plan)
	}
	if !strings.Contains(res.SQL, "CREATE TABLE") {
		t.Errorf("sql missing CREATE TABLE:\n%s", res.SQL)
	}
	if !strings.HasPrefix(res.Mermaid, "erDiagram") {
		t.Errorf("mermaid missing erDiagram:\n%s", res.Mermaid)
	}
}

func TestPlanRejectsUnknownTarget(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/plan",
		`{"records": `+studentRecords+`, "fds": [], "target": "5NF"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPlanRejectsUnknownDecision(t *testing.T) {
	srv := testServer(t)

	body := `{
		"records": ` + studentRecords + `,
		"fds": [],
		"decisions": [{"determinant": ["ghost"], "dependent": ["dname"], "confirm": true}]
	}`
	resp := postJSON(t, srv.URL+"/api/plan", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
