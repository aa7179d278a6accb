package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"aquila/risk-insights-api/internal/alert"
	"aquila/risk-insights-api/internal/domain"
	"aquila/risk-insights-api/internal/report"
	"aquila/risk-insights-api/internal/store"
)

// Handler holds the dependencies shared across all HTTP handlers.
type Handler struct {
	store    *store.Store
	engine   *report.Engine
	notifier *alert.Notifier
}

// NewHandler creates a Handler wired to the given dependencies.
func NewHandler(s *store.Store, e *report.Engine, n *alert.Notifier) *Handler {
	return &Handler{store: s, engine: e, notifier: n}
}

// ─── POST /api/v1/records ─────────────────────────────────────────────────────

// SubmitRecord ingests a single detection record. The record is validated
// against the ingestion invariants before it is stored; malformed records
// are rejected rather than silently miscounted.
func (h *Handler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	var rec domain.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		fail(w, http.StatusBadRequest,"INVALID_JSON", "request body must be valid JSON")
		return
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := domain.ValidateRecord(&rec); err != nil {
		fail(w, http.StatusBadRequest,"VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.store.SaveRecord(&rec); err != nil {
		if errors.Is(err, store.ErrDuplicateRecord) {
			fail(w, http.StatusConflict, "CONFLICT", fmt.Sprintf("record '%s' already exists", rec.ID))
			return
		}
		fail(w, http.StatusBadRequest,"SAVE_FAILED", err.Error())
		return
	}

	// Fire async webhook notifications for high-tier detections.
	h.notifier.NotifyAsync(&rec)

	respond(w, http.StatusCreated, rec)
}

// ─── POST /api/v1/records/batch ───────────────────────────────────────────────

// SubmitRecordBatch ingests a JSON array of records. Each record is
// validated independently; the response reports how many were loaded,
// rejected by validation, or skipped as duplicates.
func (h *Handler) SubmitRecordBatch(w http.ResponseWriter, r *http.Request) {
	var records []domain.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		fail(w, http.StatusBadRequest,"INVALID_JSON", "body must be a JSON array of records")
		return
	}

	var loaded, rejected, duplicates int
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if err := domain.ValidateRecord(rec); err != nil {
			rejected++
			continue
		}
		switch err := h.store.SaveRecord(rec); {
		case errors.Is(err, store.ErrDuplicateRecord):
			duplicates++
		case err == nil:
			h.notifier.NotifyAsync(rec)
			loaded++
		}
	}

	respond(w, http.StatusOK,map[string]int{"loaded": loaded, "rejected": rejected, "skipped_duplicates": duplicates})
}

// ─── GET /api/v1/records/{id} ─────────────────────────────────────────────────

// GetRecord retrieves a previously ingested record by its ID.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, exists := h.store.GetRecord(id)
	if !exists {
		fail(w, http.StatusNotFound, "NOT_FOUND",fmt.Sprintf("record '%s' not found", id))
		return
	}
	respond(w, http.StatusOK,rec)
}

// ─── Window parameter binding ─────────────────────────────────────────────────

// windowModes is the set of modes the query surface accepts. The engine
// itself passes unknown modes through; the API rejects them up front.
var windowModes = map[string]bool{
	domain.WindowToday:     true,
	domain.WindowYesterday: true,
	domain.WindowLast7:     true,
	domain.WindowLast30:    true,
	domain.WindowLastYear:  true,
	domain.WindowCustom:    true,
}

// bindWindow reads the window query params and returns the filtered
// record snapshot. On a binding error it writes the 400 itself and
// returns ok=false.
//
// Query params:
//
//	window — filter mode (default: last7days)
//	start, end — calendar dates (2006-01-02), required for window=custom
func (h *Handler) bindWindow(w http.ResponseWriter, r *http.Request) (records []*domain.Record, ok bool) {
	mode := r.URL.Query().Get("window")
	if mode == "" {
		mode = domain.WindowLast7
	}
	if !windowModes[mode] {
		fail(w, http.StatusBadRequest,"INVALID_WINDOW",
			"window must be one of: today, yesterday, last7days, last30days, lastYear, custom")
		return nil, false
	}

	var rng *domain.DateRange
	if mode == domain.WindowCustom {
		loc := h.engine.Location()
		start, err1 := time.ParseInLocation("2006-01-02", r.URL.Query().Get("start"), loc)
		end, err2 := time.ParseInLocation("2006-01-02", r.URL.Query().Get("end"), loc)
		if err1 != nil || err2 != nil {
			fail(w, http.StatusBadRequest,"INVALID_RANGE", "custom window requires start and end as 2006-01-02 dates")
			return nil, false
		}
		rng = &domain.DateRange{Start: start, End: end}
	}

	return h.engine.SelectWindow(h.store.AllRecords(), mode, time.Now(), rng), true
}

// ─── Dashboard queries ────────────────────────────────────────────────────────

// GetDashboardStats returns the global stats snapshot for the requested window.
func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	records, ok := h.bindWindow(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK,h.engine.Aggregate(records))
}

// GetDailySeries returns per-day rollups, most recent day first.
func (h *Handler) GetDailySeries(w http.ResponseWriter, r *http.Request) {
	records, ok := h.bindWindow(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK,h.engine.AggregateByDay(records))
}

// GetEntitySeries returns per-enterprise rollups through the table view
// model.
//
// Query params (besides the window set):
//
//	sort — column key (total, high, medium, low, reviewed, high_rate)
//	dir  — asc or desc (default: desc)
//	q    — free-text search over enterprise name and id
func (h *Handler) GetEntitySeries(w http.ResponseWriter, r *http.Request) {
	records, ok := h.bindWindow(w, r)
	if !ok {
		return
	}

	table := report.EntityTable()
	if key := r.URL.Query().Get("sort"); key != "" {
		if !table.HasColumn(key) {
			fail(w, http.StatusBadRequest,"INVALID_SORT",
				"sort must be one of: total, high, medium, low, reviewed, high_rate")
			return
		}
		table.SetSort(key, report.Direction(r.URL.Query().Get("dir")))
	}

	rows := table.Apply(h.engine.AggregateByEntity(records), r.URL.Query().Get("q"))
	respond(w, http.StatusOK,rows)
}

// GetReviewDays returns per-day review rollups, most recent day first.
func (h *Handler) GetReviewDays(w http.ResponseWriter, r *http.Request) {
	records, ok := h.bindWindow(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK,h.engine.AggregateReviewByDay(records))
}

// ─── GET /api/v1/export/{report} ──────────────────────────────────────────────

// ExportReport streams a report as a BOM-prefixed CSV download.
// Report names: daily, entities, review-days.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	records, ok := h.bindWindow(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "report")
	var payload []byte
	switch name {
	case "daily":
		payload = report.SerializeBOM(h.engine.AggregateByDay(records), report.DailyColumns())
	case "entities":
		payload = report.SerializeBOM(h.engine.AggregateByEntity(records), report.EntityColumns())
	case "review-days":
		payload = report.SerializeBOM(h.engine.AggregateReviewByDay(records), report.ReviewDayColumns())
	default:
		fail(w, http.StatusBadRequest,"INVALID_REPORT", "report must be one of: daily, entities, review-days")
		return
	}

	filename := report.ExportFilename(name, time.Now(), h.engine.Location())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

// RegisterWebhook adds a new alert endpoint.
func (h *Handler) RegisterWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest,"INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.URL == "" {
		fail(w, http.StatusBadRequest,"MISSING_URL", "url is required")
		return
	}

	wh := &domain.WebhookConfig{
		ID:        uuid.NewString(),
		URL:       req.URL,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}
	h.store.SaveWebhook(wh)
	respond(w, http.StatusCreated, wh)
}

// DeleteWebhook deactivates and removes a webhook.
func (h *Handler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.DeleteWebhook(id) {
		fail(w, http.StatusNotFound, "NOT_FOUND",fmt.Sprintf("webhook '%s' not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
