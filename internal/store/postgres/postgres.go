package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/meetbrief/meetbrief/internal/model"
	"github.com/meetbrief/meetbrief/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres-backed store over an existing connection.
// Schema setup is handled by deployment migrations, not at open time.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Summaries() store.Summaries { return &summaries{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type summaries struct{ db *sql.DB }

func (r *summaries) Create(ctx context.Context, m *model.Summary) (*model.Summary, error) {
	id := m.SummaryID
	if id == "" {
		id = uuid.New().String()
	}
	tags, err := marshalTags(m.Tags)
	if err != nil {
		return nil, err
	}

	var created time.Time
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO summaries
            (summary_id, owner_id, title, original_text, instruction,
             generated_summary, edited_summary, tags, is_public)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING creation_time`,
		id, m.OwnerID, m.Title, m.OriginalText, m.Instruction,
		m.GeneratedSummary, m.EditedSummary, tags, m.IsPublic)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}

	out := *m
	out.SummaryID = id
	out.CreationTime = created
	out.UpdateTime = created
	return &out, nil
}

func (r *summaries) GetByID(ctx context.Context, ownerID, summaryID string) (*model.Summary, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT summary_id, owner_id, title, original_text, instruction,
               generated_summary, edited_summary, tags, is_public, creation_time, update_time
        FROM summaries WHERE owner_id=$1 AND summary_id=$2`, ownerID, summaryID)
	return scanSummary(row)
}

func (r *summaries) List(ctx context.Context, ownerID string) ([]*model.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT summary_id, owner_id, title, original_text, instruction,
               generated_summary, edited_summary, tags, is_public, creation_time, update_time
        FROM summaries WHERE owner_id=$1
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
	tags, err := marshalTags(m.Tags)
	if err != nil {
		return nil, err
	}

	var updated time.Time
	row := r.db.QueryRowContext(ctx, `
        UPDATE summaries
        SET title=$1, edited_summary=$2, tags=$3, is_public=$4, update_time=now()
        WHERE owner_id=$5 AND summary_id=$6
        RETURNING update_time`,
		m.Title, m.EditedSummary, tags, m.IsPublic, m.OwnerID, m.SummaryID)
	if err := row.Scan(&updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}

	out := *m
	out.UpdateTime = updated
	return &out, nil
}

func (r *summaries) Delete(ctx context.Context, ownerID, summaryID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM summaries WHERE owner_id=$1 AND summary_id=$2`, ownerID, summaryID)
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
	err := row.Scan(&m.SummaryID, &m.OwnerID, &m.Title, &m.OriginalText, &m.Instruction,
		&m.GeneratedSummary, &m.EditedSummary, &tags, &m.IsPublic, &m.CreationTime, &m.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
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
