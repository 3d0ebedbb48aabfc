package domain

import "time"

// State holds shipping statistics persisted between runs.
//
// The clear-text fallback is deliberately absent: it lasts for one process only.
type State struct {
	LastUploadAt  time.Time      `json:"last_upload_at"`
	LastOutcome   string         `json:"last_outcome"`
	LastSuccessAt time.Time      `json:"last_success_at"`
	Uploads       int64          `json:"uploads"`
	Rows          int64          `json:"rows"`
	Outcomes      map[string]int `json:"outcomes"`
}

// Record accounts for one upload attempt that ended in outcome.
// rows is counted only on success.
func (s *State) Record(outcome string, success bool, rows int, at time.Time) {
	if s.Outcomes == nil {
		s.Outcomes = make(map[string]int)
	}
	s.Outcomes[outcome]++
	s.Uploads++
	s.LastUploadAt = at
	s.LastOutcome = outcome
	if success {
		s.Rows += int64(rows)
		s.LastSuccessAt = at
	}
}
