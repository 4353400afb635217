package eventlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/wrtmon/wrtmon/internal/model"
)

func openTestJournal(t *testing.T, limit int) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "events.db"), limit)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestAppendAndRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, 10)

	for _, msg := range []string{"first", "second", "third"} {
		if err := j.Append(ctx, model.Event{PollID: "p1", Level: model.EventInfo, Message: msg}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Message != "third" || events[2].Message != "first" {
		t.Fatalf("expected newest first, got %v", events)
	}
	if events[0].CreatedAt.IsZero() {
		t.Fatalf("expected created_at to round-trip")
	}
}

func TestAppendPrunesToLimit(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, 2)

	for _, msg := range []string{"first", "second", "third"} {
		if err := j.Append(ctx, model.Event{PollID: "p1", Level: model.EventWarn, Message: msg}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected journal pruned to 2, got %d", len(events))
	}
	if events[0].Message != "third" || events[1].Message != "second" {
		t.Fatalf("expected oldest entry pruned, got %v", events)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, 10)

	if err := j.Append(ctx, model.Event{PollID: "p1", Level: model.EventError, Message: "boom"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	events, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty journal, got %v", events)
	}
}
