package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"aquila/risk-insights-api/internal/alert"
	"aquila/risk-insights-api/internal/api"
	"aquila/risk-insights-api/internal/domain"
	"aquila/risk-insights-api/internal/report"
	"aquila/risk-insights-api/internal/store"
)

// ─── Test server setup ────────────────────────────────────────────────────────

func newServer(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	s := store.New()
	engine := report.New(time.UTC)
	notifier := alert.New(s, zerolog.Nop())
	handler := api.NewHandler(s, engine, notifier)
	return api.NewRouter(handler, zerolog.Nop()), s
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the envelope's data field into out.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data  json.RawMessage `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rr.Body.String())
	}
	if env.Error != nil {
		t.Fatalf("unexpected API error: %s %s", env.Error.Code, env.Error.Message)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil || env.Error == nil {
		t.Fatalf("no error envelope in %s", rr.Body.String())
	}
	return env.Error.Code
}

// sample builds a valid pending record on the given day.
func sample(id, entityID, entityName, tier string, weight int, day string) domain.Record {
	at, _ := time.Parse("2006-01-02T15:04:05Z07:00", day+"T12:00:00Z")
	return domain.Record{
		ID:            id,
		EntityID:      entityID,
		EntityName:    entityName,
		SubjectRef:    "+15550002222",
		OccurredAt:    at,
		RiskTier:      tier,
		Category:      "impersonation",
		Signals:       []string{"urgency_language"},
		ReviewState:   domain.ReviewPending,
		ReviewOutcome: domain.OutcomePending,
		Weight:        weight,
	}
}

func markReviewed(rec *domain.Record, outcome string) domain.Record {
	rec.ReviewState = domain.ReviewDone
	rec.ReviewOutcome = outcome
	rec.ReviewerID = "rev-1"
	return *rec
}

// seedWeek loads a small fixed dataset via the batch endpoint.
func seedWeek(t *testing.T, router http.Handler) {
	t.Helper()
	r1 := sample("r1", "ent-a", "Alpha Corp", domain.TierHigh, 1, "2024-03-10")
	r2 := sample("r2", "ent-a", "Alpha Corp", domain.TierMedium, 5, "2024-03-10")
	r3 := sample("r3", "ent-b", "Beta LLC", domain.TierLow, 40, "2024-03-11")
	r4 := sample("r4", "ent-b", "Beta LLC", domain.TierHigh, 2, "2024-03-12")
	batch := []domain.Record{
		markReviewed(&r1, domain.OutcomeTruePositive),
		r2,
		r3,
		markReviewed(&r4, domain.OutcomeFalsePositive),
	}
	rr := doJSON(t, router, http.MethodPost, "/api/v1/records/batch", batch)
	if rr.Code != http.StatusOK {
		t.Fatalf("seed batch status = %d: %s", rr.Code, rr.Body.String())
	}
}

const weekWindow = "window=custom&start=2024-03-09&end=2024-03-13"

// ─── Ingestion ────────────────────────────────────────────────────────────────

func TestSubmitRecord_AndGet(t *testing.T) {
	router, _ := newServer(t)

	rec := sample("rec-1", "ent-a", "Alpha Corp", domain.TierHigh, 1, "2024-03-10")
	rr := doJSON(t, router, http.MethodPost, "/api/v1/records", rec)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, http.MethodGet, "/api/v1/records/rec-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	var got domain.Record
	decodeData(t, rr, &got)
	if got.ID != "rec-1" || got.RiskTier != domain.TierHigh {
		t.Errorf("got %+v", got)
	}
}

func TestSubmitRecord_AssignsIDWhenMissing(t *testing.T) {
	router, s := newServer(t)

	rec := sample("", "ent-a", "Alpha Corp", domain.TierLow, 3, "2024-03-10")
	rec.Category = domain.CategoryNormal
	rec.Signals = nil
	rr := doJSON(t, router, http.MethodPost, "/api/v1/records", rec)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var got domain.Record
	decodeData(t, rr, &got)
	if got.ID == "" {
		t.Fatal("no ID assigned")
	}
	if _, ok := s.GetRecord(got.ID); !ok {
		t.Error("record not stored under the assigned ID")
	}
}

func TestSubmitRecord_ValidationError(t *testing.T) {
	router, s := newServer(t)

	rec := sample("bad-1", "ent-a", "Alpha Corp", "catastrophic", 1, "2024-03-10")
	rr := doJSON(t, router, http.MethodPost, "/api/v1/records", rec)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if code := errCode(t, rr); code != "VALIDATION_ERROR" {
		t.Errorf("error code = %s", code)
	}
	if s.Count() != 0 {
		t.Error("malformed record was stored")
	}
}

func TestSubmitRecord_Duplicate(t *testing.T) {
	router, _ := newServer(t)

	rec := sample("dup-1", "ent-a", "Alpha Corp", domain.TierLow, 1, "2024-03-10")
	rec.Category = domain.CategoryNormal
	if rr := doJSON(t, router, http.MethodPost, "/api/v1/records", rec); rr.Code != http.StatusCreated {
		t.Fatalf("first submit status = %d", rr.Code)
	}
	rr := doJSON(t, router, http.MethodPost, "/api/v1/records", rec)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate submit status = %d", rr.Code)
	}
}

func TestSubmitRecordBatch_Counts(t *testing.T) {
	router, _ := newServer(t)

	good := sample("b1", "ent-a", "Alpha Corp", domain.TierMedium, 2, "2024-03-10")
	bad := sample("b2", "ent-a", "Alpha Corp", "nope", 1, "2024-03-10")
	dup := sample("b1", "ent-a", "Alpha Corp", domain.TierLow, 1, "2024-03-10")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/records/batch", []domain.Record{good, bad, dup})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var counts map[string]int
	decodeData(t, rr, &counts)
	if counts["loaded"] != 1 || counts["rejected"] != 1 || counts["skipped_duplicates"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	router, _ := newServer(t)
	rr := doJSON(t, router, http.MethodGet, "/api/v1/records/ghost", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

// ─── Dashboard queries ────────────────────────────────────────────────────────

func TestGetDashboardStats_CustomWindow(t *testing.T) {
	router, _ := newServer(t)
	seedWeek(t, router)

	rr := doJSON(t, router, http.MethodGet, "/api/v1/dashboard/stats?"+weekWindow, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var stats domain.DashboardStats
	decodeData(t, rr, &stats)
	if stats.TotalDetections != 48 {
		t.Errorf("total = %d, want 48", stats.TotalDetections)
	}
	if stats.HighCount != 3 || stats.MediumCount != 5 || stats.LowCount != 40 {
		t.Errorf("tiers = %d/%d/%d, want 3/5/40", stats.HighCount, stats.MediumCount, stats.LowCount)
	}
	if stats.ReviewedTotal != 3 || stats.TruePositives != 1 || stats.FalsePositives != 2 {
		t.Errorf("review counters = %+v", stats)
	}
}

func TestGetDashboardStats_WindowExcludes(t *testing.T) {
	router, _ := newServer(t)
	seedWeek(t, router)

	// Only 2024-03-10 selected: r1 (high, 1) and r2 (medium, 5).
	rr := doJSON(t, router, http.MethodGet,
		"/api/v1/dashboard/stats?window=custom&start=2024-03-10&end=2024-03-10", nil)
	var stats domain.DashboardStats
	decodeData(t, rr, &stats)
	if stats.TotalDetections != 6 {
		t.Errorf("total = %d, want 6", stats.TotalDetections)
	}
}

func TestGetDashboardStats_InvalidWindow(t *testing.T) {
	router, _ := newServer(t)
	rr := doJSON(t, router, http.MethodGet, "/api/v1/dashboard/stats?window=fortnight", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if code := errCode(t, rr); code != "INVALID_WINDOW" {
		t.Errorf("error code = %s", code)
	}
}

func TestGetDashboardStats_CustomWindowNeedsDates(t *testing.T) {
	router, _ := newServer(t)
	rr := doJSON(t, router, http.MethodGet, "/api/v1/dashboard/stats?window=custom", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if code := errCode(t, rr); code != "INVALID_RANGE" {
		t.Errorf("error code = %s", code)
	}
}

func TestGetDailySeries_DescendingDates(t *testing.T) {
	router, _ := newServer(t)
	seedWeek(t, router)

	rr := doJSON(t, router, http.MethodGet, "/api/v1/dashboard/daily?"+weekWindow, nil)
	var rows []domain.DayRow
	decodeData(t, rr, &rows)

	want := []string{"2024-03-12", "2024-03-11", "2024-03-10"}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, date := range want {
		if rows[i].Date != date {
			t.Errorf("rows[%d].Date = %s, want %s", i, rows[i].Date, date)
		}
	}
}

func TestGetEntitySeries_SortAndSearch(t *testing.T) {
	router, _ := newServer(t)
	seedWeek(t, router)

	rr := doJSON(t, router, http.MethodGet,
		"/api/v1/dashboard/entities?"+weekWindow+"&sort=high&dir=desc", nil)
	var rows []domain.EntityRow
	decodeData(t, rr, &rows)
	if len(rows) != 2 || rows[0].EntityID != "ent-b" {
		t.Fatalf("sorted rows = %+v", rows)
	}

	rr = doJSON(t, router, http.MethodGet,
		"/api/v1/dashboard/entities?"+weekWindow+"&q=alpha", nil)
	decodeData(t, rr, &rows)
	if len(rows) != 1 || rows[0].EntityID != "ent-a" {
		t.Fatalf("searched rows = %+v", rows)
	}
}

func TestGetEntitySeries_InvalidSortKey(t *testing.T) {
	router, _ := newServer(t)
	rr := doJSON(t, router, http.MethodGet, "/api/v1/dashboard/entities?sort=chakra", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if code := errCode(t, rr); code != "INVALID_SORT" {
		t.Errorf("error code = %s", code)
	}
}

func TestGetReviewDays(t *testing.T) {
	router, _ := newServer(t)
	seedWeek(t, router)

	rr := doJSON(t, router, http.MethodGet, "/api/v1/dashboard/review-days?"+weekWindow, nil)
	var rows []domain.ReviewDayRow
	decodeData(t, rr, &rows)

	// 2024-03-11 carries only unreviewed low-tier volume and is dropped.
	for _, row := range rows {
		if row.Date == "2024-03-11" {
			t.Errorf("idle day present in review series: %+v", row)
		}
	}
	if len(rows) != 2 {
		t.Fatalf("got %d review rows, want 2: %+v", len(rows), rows)
	}
}

// ─── Export ───────────────────────────────────────────────────────────────────

func TestExportReport_Daily(t *testing.T) {
	router, _ := newServer(t)
	seedWeek(t, router)

	rr := doJSON(t, router, http.MethodGet, "/api/v1/export/daily?"+weekWindow, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %s", ct)
	}
	cd := rr.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "daily_") || !strings.Contains(cd, ".csv") {
		t.Errorf("content disposition = %s", cd)
	}

	body := rr.Body.Bytes()
	if !bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("export payload missing UTF-8 BOM")
	}
	lines := strings.Split(strings.TrimRight(string(body[3:]), "\n"), "\n")
	if lines[0] != "Date,Total,High,Medium,Low,Reviewed,True Positives,Suspected,Policy Violations,False Positives" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 4 { // header + 3 days
		t.Errorf("got %d lines, want 4", len(lines))
	}
}

func TestExportReport_EmptyWindow_HeaderOnly(t *testing.T) {
	router, _ := newServer(t)
	seedWeek(t, router)

	rr := doJSON(t, router, http.MethodGet,
		"/api/v1/export/entities?window=custom&start=2020-01-01&end=2020-01-02", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	lines := strings.Split(strings.TrimRight(rr.Body.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("empty export produced %d lines, want header only", len(lines))
	}
}

func TestExportReport_UnknownName(t *testing.T) {
	router, _ := newServer(t)
	rr := doJSON(t, router, http.MethodGet, "/api/v1/export/quarterly", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if code := errCode(t, rr); code != "INVALID_REPORT" {
		t.Errorf("error code = %s", code)
	}
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

func TestWebhook_RegisterAndDelete(t *testing.T) {
	router, s := newServer(t)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/webhooks", map[string]string{"url": "http://alerts.local/hook"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rr.Code)
	}
	var wh domain.WebhookConfig
	decodeData(t, rr, &wh)
	if wh.ID == "" || !wh.Active {
		t.Fatalf("webhook = %+v", wh)
	}
	if len(s.ListActiveWebhooks()) != 1 {
		t.Error("webhook not stored")
	}

	rr = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/webhooks/%s", wh.ID), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/webhooks/%s", wh.ID), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rr.Code)
	}
}

func TestWebhook_MissingURL(t *testing.T) {
	router, _ := newServer(t)
	rr := doJSON(t, router, http.MethodPost, "/api/v1/webhooks", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newServer(t)
	rr := doJSON(t, router, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]string
	decodeData(t, rr, &body)
	if body["status"] != "ok" {
		t.Errorf("health body = %v", body)
	}
}
