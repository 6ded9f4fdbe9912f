package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PeriodType is the granularity of a summary.
type PeriodType string

const (
	PeriodSession          PeriodType = "session"
	PeriodDay              PeriodType = "day"
	PeriodWeek             PeriodType = "week"
	PeriodMonth            PeriodType = "month"
	PeriodYear             PeriodType = "year"
	PeriodYearWrap         PeriodType = "yearWrap"
	PeriodYearWrapWork     PeriodType = "yearWrapWork"
	PeriodYearWrapPersonal PeriodType = "yearWrapPersonal"
)

func ParsePeriodType(s string) (PeriodType, error) {
	switch PeriodType(s) {
	case PeriodSession, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear,
		PeriodYearWrap, PeriodYearWrapWork, PeriodYearWrapPersonal:
		return PeriodType(s), nil
	}
	return "", fmt.Errorf("unknown period type %q", s)
}

// PeriodBounds returns [start, end) for the period containing t.
// Weeks start on Monday; year-wrap variants cover the calendar year.
func PeriodBounds(pt PeriodType, t time.Time) (time.Time, time.Time) {
	loc := t.Location()
	switch pt {
	case PeriodDay:
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 0, 1)
	case PeriodWeek:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7)
	case PeriodMonth:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	default:
		start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	}
}

// ClassifiedItem is a year-wrap insight item tagged with the category
// derived from the underlying sessions at generation time.
type ClassifiedItem struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Summary is a generated summary at one period granularity. At most one
// summary exists per (PeriodType, PeriodStart); regeneration overwrites.
// Session-level summaries are keyed by SessionID instead.
type Summary struct {
	ID          int64            `json:"id"`
	PeriodType  PeriodType       `json:"period_type"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	SessionID   *uuid.UUID       `json:"session_id,omitempty"`
	Engine      string           `json:"engine"`
	Title       string           `json:"title"`
	Text        string           `json:"text"`
	KeyInsights []string         `json:"key_insights,omitempty"`
	Themes      []string         `json:"themes,omitempty"`
	ActionItems []string         `json:"action_items,omitempty"`
	MajorArcs   []ClassifiedItem `json:"major_arcs,omitempty"`
	BiggestWins []ClassifiedItem `json:"biggest_wins,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// SessionIntelligence is the structured output of summarizing one session.
type SessionIntelligence struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	KeyInsights []string `json:"key_insights"`
	Themes      []string `json:"themes"`
	ActionItems []string `json:"action_items"`
	Sentiment   float64  `json:"sentiment"`
	Engine      string   `json:"engine"`
}

// PeriodIntelligence is the structured output of summarizing a period from
// its constituent session summaries.
type PeriodIntelligence struct {
	Title       string           `json:"title"`
	Summary     string           `json:"summary"`
	KeyInsights []string         `json:"key_insights"`
	Themes      []string         `json:"themes"`
	ActionItems []string         `json:"action_items"`
	MajorArcs   []ClassifiedItem `json:"major_arcs,omitempty"`
	BiggestWins []ClassifiedItem `json:"biggest_wins,omitempty"`
	Engine      string           `json:"engine"`
}
