package models

import "time"

// WordCount is one word-cloud entry.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Mention is a person or place referenced in transcripts.
type Mention struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MentionReport groups detected mentions for a time range.
type MentionReport struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	People []Mention `json:"people"`
	Places []Mention `json:"places"`
}

// SentimentPoint is an aggregated sentiment score for one day.
type SentimentPoint struct {
	Day   time.Time `json:"day"`
	Score float64   `json:"score"`
}
