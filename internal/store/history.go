package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultListLimit bounds History.List when no positive limit is given.
const DefaultListLimit = 10

// History persists assessment records. Every read and delete is scoped to the
// owning account.
type History struct {
	db     DBTX
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// Save appends a record to the account's history.
func (h *History) Save(ctx context.Context, in NewRecord) (*Record, error) {
	rec := &Record{
		ID:         h.newID(),
		AccountID:  in.AccountID,
		Filename:   in.Filename,
		MatchScore: in.MatchScore,
		JobTitle:   in.JobTitle,
		Payload:    in.Payload,
		CreatedAt:  h.now().UTC(),
	}

	var title sql.NullString
	if rec.JobTitle != "" {
		title = sql.NullString{String: rec.JobTitle, Valid: true}
	}

	query := `INSERT INTO assessment_records (id, account_id, filename, match_score, job_title, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := h.db.ExecContext(ctx, query,
		rec.ID, rec.AccountID, rec.Filename, rec.MatchScore, title, string(rec.Payload), rec.CreatedAt.UnixNano())
	if err != nil {
		return nil, storeFailure("insert record", err)
	}

	h.logger.Debug("record saved",
		zap.String("account_id", rec.AccountID),
		zap.String("record_id", rec.ID),
		zap.Int("match_score", rec.MatchScore),
	)

	return rec, nil
}

// List returns at most limit records of the account, newest first.
func (h *History) List(ctx context.Context, accountID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, account_id, filename, match_score, job_title, payload, created_at
		FROM assessment_records
		WHERE account_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`

	rows, err := h.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, storeFailure("list records", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storeFailure("scan record", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("list records", err)
	}

	return records, nil
}

// Get returns one record owned by the account. Records of other accounts are
// reported as ErrNotFound.
func (h *History) Get(ctx context.Context, accountID, recordID string) (*Record, error) {
	query := `SELECT id, account_id, filename, match_score, job_title, payload, created_at
		FROM assessment_records
		WHERE id = ? AND account_id = ?`

	rec, err := scanRecord(h.db.QueryRowContext(ctx, query, recordID, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeFailure("select record", err)
	}

	return rec, nil
}

// Delete removes one record owned by the account. Missing records and records
// of other accounts are reported as ErrNotFound and nothing changes.
func (h *History) Delete(ctx context.Context, accountID, recordID string) error {
	query := `DELETE FROM assessment_records WHERE id = ? AND account_id = ?`

	res, err := h.db.ExecContext(ctx, query, recordID, accountID)
	if err != nil {
		return storeFailure("delete record", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storeFailure("delete record", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	h.logger.Debug("record deleted", zap.String("account_id", accountID), zap.String("record_id", recordID))

	return nil
}

// Stats aggregates the account's scores.
func (h *History) Stats(ctx context.Context, accountID string) (Stats, error) {
	query := `SELECT COUNT(*), AVG(match_score), MAX(match_score), MIN(match_score)
		FROM assessment_records
		WHERE account_id = ?`

	var (
		stats    Stats
		avg      sql.NullFloat64
		maxScore sql.NullInt64
		minScore sql.NullInt64
	)
	err := h.db.QueryRowContext(ctx, query, accountID).Scan(&stats.Count, &avg, &maxScore, &minScore)
	if err != nil {
		return Stats{}, storeFailure("aggregate records", err)
	}

	if stats.Count > 0 {
		stats.Average = avg.Float64
		stats.Max = int(maxScore.Int64)
		stats.Min = int(minScore.Int64)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec     Record
		title   sql.NullString
		payload string
		created int64
	)
	if err := row.Scan(&rec.ID, &rec.AccountID, &rec.Filename, &rec.MatchScore, &title, &payload, &created); err != nil {
		return nil, err
	}

	rec.JobTitle = title.String
	rec.Payload = []byte(payload)
	rec.CreatedAt = time.Unix(0, created).UTC()

	return &rec, nil
}
