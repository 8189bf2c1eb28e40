// Package session keeps wizard sessions in a bounded in-memory LRU.
package session

import (
	"errors"
	"time"

	"hookforge/internal/generate"
	"hookforge/internal/token"
)

var ErrNotFound = errors.New("session not found")

// Step is a wizard screen.
type Step int

const (
	StepDetails Step = iota + 1
	StepHook
	StepReview
	StepGenerated
)

func (s Step) Valid() bool { return s >= StepDetails && s <= StepGenerated }

// Status tracks the generation state of a session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Session is one wizard run. Values are stored by copy; callers never share
// a Session with the store.
type Session struct {
	ID     string       `json:"id"`
	Step   Step         `json:"step"`
	Config token.Config `json:"config"`
	Status Status       `json:"status"`
	// Result is the latest generation, replaced wholesale on the next run.
	Result *generate.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
	// Run increments on every generate and reset so stale results can be
	// discarded.
	Run       uint64    `json:"run"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone deep-copies s.
func (s Session) Clone() Session {
	out := s
	out.Config = s.Config.Clone()
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	return out
}
