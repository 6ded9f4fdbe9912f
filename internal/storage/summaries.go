package storage

import (
	"database/sql"
	"fmt"
	"lifewrapped/internal/models"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// UpsertSummary enforces the at-most-one-summary invariant: any existing
// row for the same (periodType, periodStart), or the same session for
// session-level summaries, is replaced in one transaction.
func (s *Store) UpsertSummary(sum *models.Summary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	if sum.SessionID != nil {
		_, err = tx.Exec(`DELETE FROM summaries WHERE session_id = ?`, sum.SessionID.String())
	} else {
		_, err = tx.Exec(`DELETE FROM summaries WHERE period_type = ? AND period_start = ? AND session_id IS NULL`,
			string(sum.PeriodType), formatTime(sum.PeriodStart))
	}
	if err != nil {
		return fmt.Errorf("replace summary: %w", err)
	}

	var sessionID sql.NullString
	if sum.SessionID != nil {
		sessionID = sql.NullString{String: sum.SessionID.String(), Valid: true}
	}

	res, err := tx.Exec(`
		INSERT INTO summaries (period_type, period_start, period_end, session_id, engine,
			title, content, key_insights, themes, action_items, major_arcs, biggest_wins, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(sum.PeriodType), formatTime(sum.PeriodStart), formatTime(sum.PeriodEnd),
		sessionID, sum.Engine, sum.Title, sum.Text,
		marshalList(sum.KeyInsights), marshalList(sum.Themes), marshalList(sum.ActionItems),
		marshalItems(sum.MajorArcs), marshalItems(sum.BiggestWins), formatTime(sum.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	sum.ID, _ = res.LastInsertId()
	return nil
}

// GetPeriodSummary returns the summary for (periodType, periodStart), or
// nil when none exists.
func (s *Store) GetPeriodSummary(pt models.PeriodType, start time.Time) (*models.Summary, error) {
	row := s.db.QueryRow(summarySelect+` WHERE period_type = ? AND period_start = ? AND session_id IS NULL`,
		string(pt), formatTime(start))
	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sum, err
}

// GetSessionSummary returns the session-level summary, or nil.
func (s *Store) GetSessionSummary(sessionID uuid.UUID) (*models.Summary, error) {
	row := s.db.QueryRow(summarySelect+` WHERE session_id = ?`, sessionID.String())
	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sum, err
}

// ListSummaries returns all summaries ordered by period start, then type.
func (s *Store) ListSummaries() ([]models.Summary, error) {
	rows, err := s.db.Query(summarySelect + ` ORDER BY period_start ASC, period_type ASC`)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *sum)
	}
	return summaries, rows.Err()
}

const summarySelect = `
	SELECT id, period_type, period_start, period_end, session_id, engine,
		title, content, key_insights, themes, action_items, major_arcs, biggest_wins, created_at
	FROM summaries`

func scanSummary(row rowScanner) (*models.Summary, error) {
	var (
		sum                          models.Summary
		periodType, startStr, endStr string
		sessionID                    sql.NullString
		insights, themes, actions    sql.NullString
		arcs, wins                   sql.NullString
		createdAt                    string
	)
	if err := row.Scan(&sum.ID, &periodType, &startStr, &endStr, &sessionID, &sum.Engine,
		&sum.Title, &sum.Text, &insights, &themes, &actions, &arcs, &wins, &createdAt); err != nil {
		return nil, err
	}

	sum.PeriodType = models.PeriodType(periodType)

	var err error
	if sum.PeriodStart, err = parseTime(startStr); err != nil {
		return nil, fmt.Errorf("parse period start: %w", err)
	}
	if sum.PeriodEnd, err = parseTime(endStr); err != nil {
		return nil, fmt.Errorf("parse period end: %w", err)
	}
	if sum.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created at: %w", err)
	}
	if sessionID.Valid {
		id, err := uuid.Parse(sessionID.String)
		if err != nil {
			return nil, fmt.Errorf("parse session id: %w", err)
		}
		sum.SessionID = &id
	}

	sum.KeyInsights = unmarshalList(insights)
	sum.Themes = unmarshalList(themes)
	sum.ActionItems = unmarshalList(actions)
	sum.MajorArcs = unmarshalItems(arcs)
	sum.BiggestWins = unmarshalItems(wins)
	return &sum, nil
}

func marshalList(items []string) sql.NullString {
	if len(items) == 0 {
		return sql.NullString{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

func unmarshalList(col sql.NullString) []string {
	if !col.Valid {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(col.String), &items); err != nil {
		return nil
	}
	return items
}

func marshalItems(items []models.ClassifiedItem) sql.NullString {
	if len(items) == 0 {
		return sql.NullString{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

func unmarshalItems(col sql.NullString) []models.ClassifiedItem {
	if !col.Valid {
		return nil
	}
	var items []models.ClassifiedItem
	if err := json.Unmarshal([]byte(col.String), &items); err != nil {
		return nil
	}
	return items
}
