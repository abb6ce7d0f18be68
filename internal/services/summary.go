package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/meetbrief/meetbrief/internal/model"
	"github.com/meetbrief/meetbrief/internal/store"
)

// Generator produces a summary text for a (text, instruction) pair.
// Implemented by genai.Engine.
type Generator interface {
	Generate(ctx context.Context, originalText, instruction string) (string, error)
}

// SummaryService owns the summary lifecycle: create-from-generation, read,
// list, edit and delete, all scoped to the resolved owner.
type SummaryService struct {
	store  store.Store
	engine Generator
}

func NewSummaryService(s store.Store, engine Generator) *SummaryService {
	return &SummaryService{store: s, engine: engine}
}

// CreateFromGeneration runs the generation engine and persists the result as
// a new summary. On generation failure nothing is persisted and the failure
// propagates unchanged. The edited summary starts out equal to the generated
// one, so current content is well defined from the first read.
func (s *SummaryService) CreateFromGeneration(ctx context.Context, ownerID, title, originalText, instruction string) (*model.Summary, error) {
	generated, err := s.engine.Generate(ctx, originalText, instruction)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(title) == "" {
		title = model.DefaultTitle
	}
	return s.store.Summaries().Create(ctx, &model.Summary{
		OwnerID:          ownerID,
		Title:            title,
		OriginalText:     originalText,
		Instruction:      instruction,
		GeneratedSummary: generated,
		EditedSummary:    generated,
	})
}

// List returns all of the owner's summaries, most recent first.
func (s *SummaryService) List(ctx context.Context, ownerID string) ([]*model.Summary, error) {
	return s.store.Summaries().List(ctx, ownerID)
}

// Get returns the summary only when it exists and belongs to the owner;
// otherwise model.ErrNotFound, with no distinction between the two cases.
func (s *SummaryService) Get(ctx context.Context, ownerID, summaryID string) (*model.Summary, error) {
	return s.store.Summaries().GetByID(ctx, ownerID, summaryID)
}

// EditRequest carries the fields a summary edit may replace. Nil Title and
// Tags leave the stored values untouched.
type EditRequest struct {
	EditedContent string
	Title         *string
	Tags          []string
}

// ApplyEdit replaces the edited summary (and optionally title/tags) on an
// ownership-checked record. Empty content is rejected before any store access
// so a successful edit can never clear the edited summary.
func (s *SummaryService) ApplyEdit(ctx context.Context, ownerID, summaryID string, req EditRequest) (*model.Summary, error) {
	if strings.TrimSpace(req.EditedContent) == "" {
		return nil, fmt.Errorf("%w: edited content is required", model.ErrValidation)
	}

	sum, err := s.store.Summaries().GetByID(ctx, ownerID, summaryID)
	if err != nil {
		return nil, err
	}

	sum.EditedSummary = req.EditedContent
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		sum.Title = *req.Title
	}
	if req.Tags != nil {
		sum.Tags = req.Tags
	}
	return s.store.Summaries().Update(ctx, sum)
}

// Delete removes an ownership-checked record. Deleting an id that is already
// gone reports model.ErrNotFound; deletion is not a no-op.
func (s *SummaryService) Delete(ctx context.Context, ownerID, summaryID string) error {
	return s.store.Summaries().Delete(ctx, ownerID, summaryID)
}
