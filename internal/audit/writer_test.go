package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tkingovr/headergate/api"
)

func TestJSONLStore_WriteAndQuery(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONLStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()

	record := &api.AuditRecord{
		Timestamp: time.Now(),
		Direction: api.DirectionInbound,
		Route:     "/internal/a",
		Header:    "custom-header",
		Outcome:   api.OutcomeAllow,
		Rule:      "require:custom-header",
	}
	if err := store.Write(ctx, record); err != nil {
		t.Fatal(err)
	}
	if record.ID == "" {
		t.Error("expected store to assign an ID")
	}

	results, err := store.Query(ctx, api.QueryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Route != "/internal/a" {
		t.Errorf("expected route /internal/a, got %s", results[0].Route)
	}
}

func TestJSONLStore_QueryFilter(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONLStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()

	records := []*api.AuditRecord{
		{Timestamp: time.Now(), Route: "/internal/a", Outcome: api.OutcomeAllow},
		{Timestamp: time.Now(), Route: "/internal/b", Outcome: api.OutcomeForbid},
		{Timestamp: time.Now(), Client: "a", Direction: api.DirectionOutbound, Outcome: api.OutcomeAllow},
	}
	for _, r := range records {
		if err := store.Write(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	results, err := store.Query(ctx, api.QueryFilter{Outcome: api.OutcomeForbid})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 forbid result, got %d", len(results))
	}

	results, err = store.Query(ctx, api.QueryFilter{Client: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 client result, got %d", len(results))
	}

	results, err = store.Query(ctx, api.QueryFilter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results with limit, got %d", len(results))
	}
}

func TestJSONLStore_Stats(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONLStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()

	records := []*api.AuditRecord{
		{Timestamp: time.Now(), Route: "/internal/a", Outcome: api.OutcomeAllow},
		{Timestamp: time.Now(), Route: "/internal/a", Outcome: api.OutcomeForbid},
		{Timestamp: time.Now(), Route: "/internal/b", Outcome: api.OutcomeAllow},
		{Timestamp: time.Now(), Client: "a", Outcome: api.OutcomeAllow},
	}
	for _, r := range records {
		if err := store.Write(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalExchanges != 4 {
		t.Errorf("expected 4 exchanges, got %d", stats.TotalExchanges)
	}
	if stats.AllowCount != 3 || stats.ForbidCount != 1 {
		t.Errorf("unexpected counts: allow=%d forbid=%d", stats.AllowCount, stats.ForbidCount)
	}
	if stats.ByRoute["/internal/a"] != 2 {
		t.Errorf("expected 2 records for /internal/a, got %d", stats.ByRoute["/internal/a"])
	}
	if stats.ByClient["a"] != 1 {
		t.Errorf("expected 1 record for client a, got %d", stats.ByClient["a"])
	}
}

func TestJSONLStore_WritesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONLStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	record := &api.AuditRecord{Timestamp: now, Route: "/internal/a", Outcome: api.OutcomeAllow}
	if err := store.Write(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, now.Format("2006-01-02")+".jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("expected JSONL file to contain the record")
	}
}

func TestJSONLStore_Subscribe(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONLStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	ch, cancel := store.Subscribe(ctx)
	defer cancel()

	record := &api.AuditRecord{Timestamp: time.Now(), Route: "/internal/a", Outcome: api.OutcomeAllow}
	if err := store.Write(ctx, record); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-ch:
		if got.Route != "/internal/a" {
			t.Errorf("expected subscribed record, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscribed record")
	}
}
