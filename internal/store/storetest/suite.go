package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meetbrief/meetbrief/internal/model"
	"github.com/meetbrief/meetbrief/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	ownerID := "owner-" + uuid.New().String()
	otherID := "owner-" + uuid.New().String()

	// Create
	created, err := s.Summaries().Create(ctx, &model.Summary{
		OwnerID:          ownerID,
		Title:            "Weekly sync",
		OriginalText:     "We discussed budget.",
		Instruction:      "One-line summary",
		GeneratedSummary: "Budget was discussed.",
		EditedSummary:    "Budget was discussed.",
		Tags:             []string{"finance", "weekly"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.SummaryID == "" {
		t.Fatalf("Create: empty summary id")
	}
	if created.CreationTime.IsZero() || created.UpdateTime.IsZero() {
		t.Fatalf("Create: timestamps not assigned: %+v", created)
	}

	// GetByID round-trips all fields
	got, err := s.Summaries().GetByID(ctx, ownerID, created.SummaryID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.OriginalText != "We discussed budget." || got.Instruction != "One-line summary" {
		t.Fatalf("GetByID: input fields not preserved: %+v", got)
	}
	if got.GeneratedSummary != "Budget was discussed." || got.EditedSummary != "Budget was discussed." {
		t.Fatalf("GetByID: artifact fields not preserved: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "finance" || got.Tags[1] != "weekly" {
		t.Fatalf("GetByID: tags order not preserved: %v", got.Tags)
	}

	// Cross-owner isolation: another owner sees not-found, not an error leak.
	if _, err := s.Summaries().GetByID(ctx, otherID, created.SummaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByID cross-owner: want ErrNotFound, got %v", err)
	}

	// List ordering: most recent first.
	time.Sleep(5 * time.Millisecond) // ensure monotonic creation time ordering
	second, err := s.Summaries().Create(ctx, &model.Summary{
		OwnerID:          ownerID,
		Title:            "Standup",
		OriginalText:     "Short standup notes.",
		Instruction:      "Bullet points",
		GeneratedSummary: "- notes",
		EditedSummary:    "- notes",
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	lst, err := s.Summaries().List(ctx, ownerID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lst) != 2 {
		t.Fatalf("List: want 2 records, got %d", len(lst))
	}
	if lst[0].SummaryID != second.SummaryID || lst[1].SummaryID != created.SummaryID {
		t.Fatalf("List: not ordered by creation time desc: %s, %s", lst[0].SummaryID, lst[1].SummaryID)
	}
	if other, err := s.Summaries().List(ctx, otherID); err != nil || len(other) != 0 {
		t.Fatalf("List other owner: n=%d err=%v", len(other), err)
	}

	// Update refreshes edit fields and update time.
	created.EditedSummary = "Budget discussed."
	created.Title = "Weekly sync (edited)"
	created.Tags = []string{"finance"}
	updated, err := s.Summaries().Update(ctx, created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.UpdateTime.After(updated.CreationTime) && !updated.UpdateTime.Equal(updated.CreationTime) {
		t.Fatalf("Update: update time not refreshed: %+v", updated)
	}
	got, err = s.Summaries().GetByID(ctx, ownerID, created.SummaryID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.EditedSummary != "Budget discussed." || got.Title != "Weekly sync (edited)" {
		t.Fatalf("Update not persisted: %+v", got)
	}
	if got.GeneratedSummary != "Budget was discussed." {
		t.Fatalf("Update must not touch generated summary: %+v", got)
	}

	// Update under the wrong owner never mutates and reports not-found.
	wrongOwner := *created
	wrongOwner.OwnerID = otherID
	if _, err := s.Summaries().Update(ctx, &wrongOwner); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Update cross-owner: want ErrNotFound, got %v", err)
	}

	// Delete under the wrong owner fails; under the right owner succeeds once.
	if err := s.Summaries().Delete(ctx, otherID, created.SummaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Delete cross-owner: want ErrNotFound, got %v", err)
	}
	if err := s.Summaries().Delete(ctx, ownerID, created.SummaryID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Summaries().GetByID(ctx, ownerID, created.SummaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByID after delete: want ErrNotFound, got %v", err)
	}
	// Repeated delete is not a no-op.
	if err := s.Summaries().Delete(ctx, ownerID, created.SummaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("repeat Delete: want ErrNotFound, got %v", err)
	}
}
