package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/meetbrief/meetbrief/internal/model"
	"github.com/meetbrief/meetbrief/internal/store"
)

// --- Fakes ---

type fakeGenerator struct {
	out   string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, originalText, instruction string) (string, error) {
	f.calls++
	return f.out, f.err
}

// fakeStore is an in-memory store.Store honoring owner scoping and the
// not-found conflation contract.
type fakeStore struct {
	mu   sync.Mutex
	recs map[string]*model.Summary
	seq  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: map[string]*model.Summary{}}
}

func (f *fakeStore) Summaries() store.Summaries { return (*fakeSummaries)(f) }

type fakeSummaries fakeStore

func (f *fakeSummaries) Create(_ context.Context, m *model.Summary) (*model.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	out := *m
	out.SummaryID = fmt.Sprintf("sum-%d", f.seq)
	out.CreationTime = time.Now().UTC().Add(time.Duration(f.seq) * time.Millisecond)
	out.UpdateTime = out.CreationTime
	f.recs[out.SummaryID] = &out
	cp := out
	return &cp, nil
}

func (f *fakeSummaries) GetByID(_ context.Context, ownerID, summaryID string) (*model.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.recs[summaryID]
	if !ok || m.OwnerID != ownerID {
		return nil, model.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeSummaries) List(_ context.Context, ownerID string) ([]*model.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Summary
	for _, m := range f.recs {
		if m.OwnerID == ownerID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime.After(out[j].CreationTime) })
	return out, nil
}

func (f *fakeSummaries) Update(_ context.Context, m *model.Summary) (*model.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.recs[m.SummaryID]
	if !ok || cur.OwnerID != m.OwnerID {
		return nil, model.ErrNotFound
	}
	out := *m
	out.UpdateTime = time.Now().UTC()
	f.recs[out.SummaryID] = &out
	cp := out
	return &cp, nil
}

func (f *fakeSummaries) Delete(_ context.Context, ownerID, summaryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.recs[summaryID]
	if !ok || m.OwnerID != ownerID {
		return model.ErrNotFound
	}
	delete(f.recs, summaryID)
	return nil
}

// --- Tests ---

func TestCreateFromGenerationPersistsResult(t *testing.T) {
	fs := newFakeStore()
	gen := &fakeGenerator{out: "Budget was discussed."}
	svc := NewSummaryService(fs, gen)

	sum, err := svc.CreateFromGeneration(context.Background(), "owner-a", "", "We discussed budget.", "One-line summary")
	if err != nil {
		t.Fatalf("CreateFromGeneration: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("want one generation call, got %d", gen.calls)
	}
	if sum.GeneratedSummary != "Budget was discussed." || sum.EditedSummary != sum.GeneratedSummary {
		t.Fatalf("generated and edited must match at creation: %+v", sum)
	}
	if sum.OriginalText != "We discussed budget." || sum.Instruction != "One-line summary" {
		t.Fatalf("inputs not preserved verbatim: %+v", sum)
	}
	if sum.Title != model.DefaultTitle {
		t.Fatalf("blank title not defaulted: %q", sum.Title)
	}
	if len(fs.recs) != 1 {
		t.Fatalf("record not persisted")
	}
}

func TestCreateFromGenerationFailurePersistsNothing(t *testing.T) {
	fs := newFakeStore()
	gen := &fakeGenerator{err: fmt.Errorf("%w: completion call failed", model.ErrProvider)}
	svc := NewSummaryService(fs, gen)

	_, err := svc.CreateFromGeneration(context.Background(), "owner-a", "t", "text", "summarize")
	if !errors.Is(err, model.ErrProvider) {
		t.Fatalf("want ErrProvider, got %v", err)
	}
	if len(fs.recs) != 0 {
		t.Fatalf("no record may be persisted on generation failure")
	}
}

func TestListReturnsOwnerRecordsNewestFirst(t *testing.T) {
	fs := newFakeStore()
	svc := NewSummaryService(fs, &fakeGenerator{out: "s"})

	first, _ := svc.CreateFromGeneration(context.Background(), "owner-a", "first", "text", "i")
	second, _ := svc.CreateFromGeneration(context.Background(), "owner-a", "second", "text", "i")
	_, _ = svc.CreateFromGeneration(context.Background(), "owner-b", "other", "text", "i")

	lst, err := svc.List(context.Background(), "owner-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lst) != 2 {
		t.Fatalf("want 2 records for owner-a, got %d", len(lst))
	}
	if lst[0].SummaryID != second.SummaryID || lst[1].SummaryID != first.SummaryID {
		t.Fatalf("not newest-first: %s, %s", lst[0].SummaryID, lst[1].SummaryID)
	}
}

func TestApplyEditReplacesContent(t *testing.T) {
	fs := newFakeStore()
	svc := NewSummaryService(fs, &fakeGenerator{out: "Budget was discussed."})
	sum, _ := svc.CreateFromGeneration(context.Background(), "owner-a", "", "We discussed budget.", "One-line summary")

	title := "Budget sync"
	out, err := svc.ApplyEdit(context.Background(), "owner-a", sum.SummaryID, EditRequest{
		EditedContent: "Budget discussed.",
		Title:         &title,
		Tags:          []string{"finance"},
	})
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if out.EditedSummary != "Budget discussed." || out.Title != "Budget sync" {
		t.Fatalf("edit not applied: %+v", out)
	}
	if out.GeneratedSummary != "Budget was discussed." {
		t.Fatalf("generated summary must stay the historical record: %+v", out)
	}
	if out.CurrentContent() != "Budget discussed." {
		t.Fatalf("current content must follow the edit: %q", out.CurrentContent())
	}

	got, _ := svc.Get(context.Background(), "owner-a", sum.SummaryID)
	if got.EditedSummary != "Budget discussed." {
		t.Fatalf("edit not persisted: %+v", got)
	}
}

func TestApplyEditOmittedFieldsAreKept(t *testing.T) {
	fs := newFakeStore()
	svc := NewSummaryService(fs, &fakeGenerator{out: "gen"})
	sum, _ := svc.CreateFromGeneration(context.Background(), "owner-a", "Keep me", "text", "i")

	tagged, err := svc.ApplyEdit(context.Background(), "owner-a", sum.SummaryID, EditRequest{
		EditedContent: "v1", Tags: []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if tagged.Title != "Keep me" {
		t.Fatalf("nil title must not clear the stored title: %q", tagged.Title)
	}

	out, err := svc.ApplyEdit(context.Background(), "owner-a", sum.SummaryID, EditRequest{EditedContent: "v2"})
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if len(out.Tags) != 2 || out.Tags[0] != "a" || out.Tags[1] != "b" {
		t.Fatalf("nil tags must not clear the stored tags: %v", out.Tags)
	}
}

func TestApplyEditRejectsEmptyContent(t *testing.T) {
	fs := newFakeStore()
	svc := NewSummaryService(fs, &fakeGenerator{out: "gen"})
	sum, _ := svc.CreateFromGeneration(context.Background(), "owner-a", "", "text", "i")

	_, err := svc.ApplyEdit(context.Background(), "owner-a", sum.SummaryID, EditRequest{EditedContent: "   "})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}

	got, _ := svc.Get(context.Background(), "owner-a", sum.SummaryID)
	if got.EditedSummary != "gen" {
		t.Fatalf("rejected edit must not mutate the record: %+v", got)
	}
}

func TestOwnershipMismatchIsNotFound(t *testing.T) {
	fs := newFakeStore()
	svc := NewSummaryService(fs, &fakeGenerator{out: "gen"})
	sum, _ := svc.CreateFromGeneration(context.Background(), "owner-a", "", "text", "i")

	if _, err := svc.Get(context.Background(), "owner-b", sum.SummaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get: want ErrNotFound, got %v", err)
	}
	if _, err := svc.ApplyEdit(context.Background(), "owner-b", sum.SummaryID, EditRequest{EditedContent: "x"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("ApplyEdit: want ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "owner-b", sum.SummaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Delete: want ErrNotFound, got %v", err)
	}
	// The record is still there for its owner.
	if _, err := svc.Get(context.Background(), "owner-a", sum.SummaryID); err != nil {
		t.Fatalf("owner read after foreign attempts: %v", err)
	}
}

func TestDeleteIsTerminal(t *testing.T) {
	fs := newFakeStore()
	svc := NewSummaryService(fs, &fakeGenerator{out: "gen"})
	sum, _ := svc.CreateFromGeneration(context.Background(), "owner-a", "", "text", "i")

	if err := svc.Delete(context.Background(), "owner-a", sum.SummaryID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner-a", sum.SummaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "owner-a", sum.SummaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("repeat Delete: want ErrNotFound, got %v", err)
	}
}
