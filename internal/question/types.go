package question

import (
	"errors"
	"strings"
)

// Known categories. The store may carry others; these are the ones the
// original catalog ships with.
const (
	CategoryFramework  = "framework"
	CategoryLanguage   = "language"
	CategorySoftSkills = "softskills"
)

// ErrInvalidLimit is returned when a draw asks for more than the configured maximum.
var ErrInvalidLimit = errors.New("question: limit out of range")

// Question is one interview question as served by the store.
type Question struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	TechName string `json:"techName"`
	Question string `json:"question"`
	Hint     string `json:"hint"`
	Answer   string `json:"answer"`
	// Priority: smaller is more important, zero when the store has none.
	Priority int `json:"priority,omitempty"`
	// Counter seeds the exposure count when the user has no recorded history.
	Counter int `json:"counter,omitempty"`
}

// Key is the progress-store key for this question.
func (q Question) Key() string {
	return Key(q.Category, q.TechName, q.ID)
}

// Key builds "{category}:{techName}:{id}".
func Key(category, techName, id string) string {
	return strings.Join([]string{category, techName, id}, ":")
}

// CategorySelection narrows a draw to a category and, optionally, some of its
// technologies. No TechNames means every technology in the category.
type CategorySelection struct {
	Category  string   `json:"category"`
	TechNames []string `json:"techNames,omitempty"`
}

// DrawRequest asks for an ordered set of questions for one user.
type DrawRequest struct {
	UserID     string
	Selections []CategorySelection
	Limit      int
}

// Drawn is a selected question with the counters and weight used to pick it.
// Weight is recomputed on every draw and never stored.
type Drawn struct {
	Question
	Exposure int     `json:"exposure"`
	Missed   int     `json:"missed"`
	Weight   float64 `json:"weight"`
}

// DrawResult holds the ordered selection.
type DrawResult struct {
	Questions []Drawn `json:"questions"`
	Requested int     `json:"requested"`
	PoolSize  int     `json:"poolSize"`
	// Shortfall is how many fewer questions than requested the pool could supply.
	Shortfall int `json:"shortfall"`
}

// Counters are a user's recorded history for one question.
type Counters struct {
	Exposure int
	Missed   int
	// Recorded is false when the user has no exposure entry for the question.
	Recorded bool
}
