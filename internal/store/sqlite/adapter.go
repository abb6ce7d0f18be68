package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meetbrief/meetbrief/internal/model"
	"github.com/meetbrief/meetbrief/internal/store"
)

// New opens (or creates) a SQLite database file and returns a store backed by it.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wires a store over an existing connection and bootstraps the schema.
func NewWithDB(db *sql.DB) (store.Store, error) {
	if err := bootstrapSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema bootstrap: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Summaries() store.Summaries { return &summaries{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type summaries struct{ db *sql.DB }

func (r *summaries) Create(ctx context.Context, m *model.Summary) (*model.Summary, error) {
	id := m.SummaryID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	tags, err := marshalTags(m.Tags)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO summaries
            (summary_id, owner_id, title, original_text, instruction,
             generated_summary, edited_summary, tags, is_public, creation_time, update_time)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		id, m.OwnerID, m.Title, m.OriginalText, m.Instruction,
		m.GeneratedSummary, m.EditedSummary, tags, boolToInt(m.IsPublic), now, now)
	if err != nil {
		return nil, err
	}

	out := *m
	out.SummaryID = id
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (r *summaries) GetByID(ctx context.Context, ownerID, summaryID string) (*model.Summary, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT summary_id, owner_id, title, original_text, instruction,
               generated_summary, edited_summary, tags, is_public, creation_time, update_time
        FROM summaries WHERE owner_id = ? AND summary_id = ?`, ownerID, summaryID)
	return scanSummary(row)
}

func (r *summaries) List(ctx context.Context, ownerID string) ([]*model.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT summary_id, owner_id, title, original_text, instruction,
               generated_summary, edited_summary, tags, is_public, creation_time, update_time
        FROM summaries WHERE owner_id = ?
        ORDER BY creation_time DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Summary
	for rows.Next() {
		m, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *summaries) Update(ctx context.Context, m *model.Summary) (*model.Summary, error) {
	now := time.Now().UTC()
	tags, err := marshalTags(m.Tags)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `
        UPDATE summaries
        SET title = ?, edited_summary = ?, tags = ?, is_public = ?, update_time = ?
        WHERE owner_id = ? AND summary_id = ?`,
		m.Title, m.EditedSummary, tags, boolToInt(m.IsPublic), now, m.OwnerID, m.SummaryID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrNotFound
	}

	out := *m
	out.UpdateTime = now
	return &out, nil
}

func (r *summaries) Delete(ctx context.Context, ownerID, summaryID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM summaries WHERE owner_id = ? AND summary_id = ?`, ownerID, summaryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row rowScanner) (*model.Summary, error) {
	var m model.Summary
	var tags string
	var isPublic int
	err := row.Scan(&m.SummaryID, &m.OwnerID, &m.Title, &m.OriginalText, &m.Instruction,
		&m.GeneratedSummary, &m.EditedSummary, &tags, &isPublic, &m.CreationTime, &m.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	m.IsPublic = isPublic != 0
	return &m, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
