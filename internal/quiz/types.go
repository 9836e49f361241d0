package quiz

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/techquiz/internal/question"
)

var (
	ErrSessionNotFound = errors.New("quiz: session not found")
	ErrSessionFinished = errors.New("quiz: session finished")
	ErrSessionBusy     = errors.New("quiz: session busy")
)

// Session is one run through a drawn question list. Only question content is
// kept; selection weights are not stored.
type Session struct {
	ID         uuid.UUID                    `json:"id"`
	UserID     string                       `json:"userId"`
	Selections []question.CategorySelection `json:"selections"`
	Limit      int                          `json:"limit"`
	Questions  []question.Question          `json:"questions"`
	// Cursor indexes the question on screen; -1 until the first Next.
	Cursor    int       `json:"cursor"`
	Finished  bool      `json:"finished"`
	Shortfall int       `json:"shortfall"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Current returns the question on screen.
func (s *Session) Current() (question.Question, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Questions) {
		return question.Question{}, false
	}
	return s.Questions[s.Cursor], true
}

// Shown is how many questions have been presented so far.
func (s *Session) Shown() int {
	return min(s.Cursor+1, len(s.Questions))
}

// Unshown returns drawn questions never presented.
func (s *Session) Unshown() []question.Question {
	return s.Questions[s.Shown():]
}

// StartRequest opens a session for UserID.
type StartRequest struct {
	UserID     string
	Selections []question.CategorySelection
	Limit      int
}
