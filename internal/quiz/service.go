package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/techquiz/internal/metrics"
	"github.com/gokatarajesh/techquiz/internal/question"
)

// Drawer produces the ordered question list for a session.
type Drawer interface {
	Draw(ctx context.Context, req question.DrawRequest) (question.DrawResult, error)
}

// ProgressRecorder persists per-user exposure and missed counters.
type ProgressRecorder interface {
	RecordShown(ctx context.Context, userID, key string) (int, error)
	RecordMissed(ctx context.Context, userID string, keys []string) error
	Reset(ctx context.Context, userID string) error
}

// SessionStore persists sessions. Load returns nil, nil for unknown ids.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Lock(ctx context.Context, id uuid.UUID) (func() error, error)
}

type ServiceOptions struct {
	// DefaultLimit applies when StartRequest.Limit is zero.
	DefaultLimit int
	Now          func() time.Time
}

// Service runs quiz sessions on top of the question draw.
type Service struct {
	drawer       Drawer
	progress     ProgressRecorder
	store        SessionStore
	defaultLimit int
	now          func() time.Time
	logger       zerolog.Logger
}

func NewService(drawer Drawer, progress ProgressRecorder, store SessionStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		drawer:       drawer,
		progress:     progress,
		store:        store,
		defaultLimit: opts.DefaultLimit,
		now:          opts.Now,
		logger:       logger.With().Str("component", "quiz_service").Logger(),
	}
}

// Start draws a question list and stores a new session with nothing shown yet.
func (s *Service) Start(ctx context.Context, req StartRequest) (*Session, error) {
	limit := req.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	result, err := s.drawer.Draw(ctx, question.DrawRequest{
		UserID:     req.UserID,
		Selections: req.Selections,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("draw questions: %w", err)
	}

	questions := make([]question.Question, len(result.Questions))
	for i, d := range result.Questions {
		questions[i] = d.Question
	}

	now := s.now().UTC()
	session := &Session{
		ID:         uuid.New(),
		UserID:     req.UserID,
		Selections: req.Selections,
		Limit:      limit,
		Questions:  questions,
		Cursor:     -1,
		Finished:   len(questions) == 0,
		Shortfall:  result.Shortfall,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info().
		Str("session_id", session.ID.String()).
		Str("user_id", req.UserID).
		Int("questions", len(questions)).
		Int("shortfall", result.Shortfall).
		Msg("session started")
	return session, nil
}

// Get returns the session owned by userID.
func (s *Service) Get(ctx context.Context, id uuid.UUID, userID string) (*Session, error) {
	return s.load(ctx, id, userID)
}

// Current returns the question on screen, if any.
func (s *Service) Current(ctx context.Context, id uuid.UUID, userID string) (question.Question, bool, error) {
	session, err := s.load(ctx, id, userID)
	if err != nil {
		return question.Question{}, false, err
	}
	q, ok := session.Current()
	return q, ok, nil
}

// Next advances to the following question and counts it as shown. Once the
// list is exhausted the session is marked finished and ErrSessionFinished is
// returned together with the session.
func (s *Service) Next(ctx context.Context, id uuid.UUID, userID string) (*Session, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.release(id, unlock)

	session, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if session.Finished {
		return session, ErrSessionFinished
	}

	session.UpdatedAt = s.now().UTC()
	if session.Cursor+1 >= len(session.Questions) {
		session.Cursor = len(session.Questions)
		session.Finished = true
		if err := s.store.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		return session, ErrSessionFinished
	}

	session.Cursor++
	shown := session.Questions[session.Cursor]
	if _, err := s.progress.RecordShown(ctx, userID, shown.Key()); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id.String()).Str("question", shown.Key()).Msg("record exposure failed")
	}
	metrics.QuestionsShown.WithLabelValues(shown.Category).Inc()

	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Reset ends the session. Every drawn question that was never shown is counted
// as missed. Returns how many were missed.
func (s *Service) Reset(ctx context.Context, id uuid.UUID, userID string) (int, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return 0, err
	}
	defer s.release(id, unlock)

	session, err := s.load(ctx, id, userID)
	if err != nil {
		return 0, err
	}

	unshown := session.Unshown()
	if len(unshown) > 0 {
		keys := make([]string, len(unshown))
		for i, q := range unshown {
			keys[i] = q.Key()
		}
		if err := s.progress.RecordMissed(ctx, userID, keys); err != nil {
			return 0, fmt.Errorf("record missed: %w", err)
		}
		metrics.QuestionsMissed.Add(float64(len(keys)))
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return 0, fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info().
		Str("session_id", id.String()).
		Int("shown", session.Shown()).
		Int("missed", len(unshown)).
		Msg("session reset")
	return len(unshown), nil
}

// ForgetProgress clears every counter recorded for userID.
func (s *Service) ForgetProgress(ctx context.Context, userID string) error {
	if err := s.progress.Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID, userID string) (*Session, error) {
	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	// Sessions of other clients are reported as missing.
	if session == nil || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) release(id uuid.UUID, unlock func() error) {
	if err := unlock(); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("release session lock failed")
	}
}
