package store_test

import (
	"errors"
	"testing"
	"time"

	"aquila/risk-insights-api/internal/domain"
	"aquila/risk-insights-api/internal/store"
)

func rec(id, entityID string) *domain.Record {
	return &domain.Record{
		ID:            id,
		EntityID:      entityID,
		EntityName:    "Enterprise " + entityID,
		OccurredAt:    time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		RiskTier:      domain.TierLow,
		Category:      domain.CategoryNormal,
		ReviewState:   domain.ReviewPending,
		ReviewOutcome: domain.OutcomePending,
		Weight:        1,
	}
}

func TestSaveRecord_And_GetRecord(t *testing.T) {
	s := store.New()
	if err := s.SaveRecord(rec("r1", "ent-a")); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok := s.GetRecord("r1")
	if !ok || got.ID != "r1" {
		t.Fatalf("GetRecord = %v, %v", got, ok)
	}
	if _, ok := s.GetRecord("missing"); ok {
		t.Error("GetRecord found a record that was never saved")
	}
}

func TestSaveRecord_RejectsDuplicateID(t *testing.T) {
	s := store.New()
	if err := s.SaveRecord(rec("r1", "ent-a")); err != nil {
		t.Fatalf("first save: %v", err)
	}

	err := s.SaveRecord(rec("r1", "ent-b"))
	if !errors.Is(err, store.ErrDuplicateRecord) {
		t.Fatalf("second save err = %v, want ErrDuplicateRecord", err)
	}
	if s.Count() != 1 {
		t.Errorf("count = %d after duplicate save, want 1", s.Count())
	}
}

func TestAllRecords_InsertionOrder(t *testing.T) {
	s := store.New()
	for _, id := range []string{"c", "a", "b"} {
		if err := s.SaveRecord(rec(id, "ent-a")); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	all := s.AllRecords()
	want := []string{"c", "a", "b"}
	if len(all) != len(want) {
		t.Fatalf("got %d records, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("all[%d].ID = %s, want %s", i, all[i].ID, id)
		}
	}
}

func TestRecordsByEntity(t *testing.T) {
	s := store.New()
	_ = s.SaveRecord(rec("r1", "ent-a"))
	_ = s.SaveRecord(rec("r2", "ent-b"))
	_ = s.SaveRecord(rec("r3", "ent-a"))

	got := s.RecordsByEntity("ent-a")
	if len(got) != 2 || got[0].ID != "r1" || got[1].ID != "r3" {
		t.Fatalf("RecordsByEntity = %v", got)
	}
	if got := s.RecordsByEntity("ent-z"); len(got) != 0 {
		t.Errorf("unknown entity returned %d records", len(got))
	}
}

func TestWebhooks_SaveListDelete(t *testing.T) {
	s := store.New()
	s.SaveWebhook(&domain.WebhookConfig{ID: "wh-1", URL: "http://a", Active: true})
	s.SaveWebhook(&domain.WebhookConfig{ID: "wh-2", URL: "http://b", Active: false})

	active := s.ListActiveWebhooks()
	if len(active) != 1 || active[0].ID != "wh-1" {
		t.Fatalf("ListActiveWebhooks = %v", active)
	}

	if !s.DeleteWebhook("wh-1") {
		t.Error("DeleteWebhook returned false for an existing webhook")
	}
	if s.DeleteWebhook("wh-1") {
		t.Error("DeleteWebhook returned true for a deleted webhook")
	}
	if len(s.ListActiveWebhooks()) != 0 {
		t.Error("deleted webhook still listed as active")
	}
}
