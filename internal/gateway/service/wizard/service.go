// Package wizard drives the token wizard: per-session configuration edits,
// step navigation, the generation run and artifact export.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hookforge/internal/codegen"
	"hookforge/internal/gateway/repository/artifact"
	"hookforge/internal/gateway/repository/session"
	"hookforge/internal/generate"
	"hookforge/internal/llm"
	"hookforge/internal/token"
)

var (
	ErrGenerationInFlight = errors.New("generation already in progress")
	ErrNoArtifacts        = errors.New("no generated artifacts")
	ErrInvalidStep        = errors.New("invalid step")
)

// Generator runs the generation pipeline.
type Generator interface {
	Generate(ctx context.Context, cfg token.Config) (generate.Result, error)
}

type Service struct {
	mu        sync.Mutex
	store     session.Store
	generator Generator
	artifacts artifact.Store
	events    *broker
	log       *zap.Logger
	now       func() time.Time
}

func New(store session.Store, generator Generator, artifacts artifact.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if artifacts == nil {
		artifacts = artifact.NewMemoryStore()
	}
	return &Service{
		store:     store,
		generator: generator,
		artifacts: artifacts,
		events:    newBroker(),
		log:       logger,
		now:       time.Now,
	}
}

// Forget drops subscribers of a session that left the store.
func (s *Service) Forget(id string) {
	s.events.close(id)
}

// Create starts a session at step 1 with the default configuration.
func (s *Service) Create(_ context.Context) session.Session {
	now := s.now()
	sess := session.Session{
		ID:        uuid.NewString(),
		Step:      session.StepDetails,
		Config:    token.Default(),
		Status:    session.StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.store.Put(sess)
	s.mu.Unlock()
	s.log.Info("session created", zap.String("session", sess.ID))
	return sess
}

func (s *Service) Get(_ context.Context, id string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

// Update applies a partial configuration edit.
func (s *Service) Update(_ context.Context, id string, patch token.Patch) (session.Session, error) {
	return s.mutate(id, func(sess *session.Session) error {
		sess.Config = sess.Config.Apply(patch)
		return nil
	})
}

// SetIcon loads an icon and its preview. A rejected payload leaves the
// previous icon in place.
func (s *Service) SetIcon(_ context.Context, id string, data []byte) (session.Session, error) {
	return s.mutate(id, func(sess *session.Session) error {
		cfg, err := sess.Config.WithIcon(data)
		if err != nil {
			return err
		}
		sess.Config = cfg
		return nil
	})
}

func (s *Service) ClearIcon(_ context.Context, id string) (session.Session, error) {
	return s.mutate(id, func(sess *session.Session) error {
		sess.Config = sess.Config.ClearIcon()
		return nil
	})
}

// SetStep navigates between screens. The generated screen is only reachable
// once artifacts exist, and navigation is locked while generating.
func (s *Service) SetStep(_ context.Context, id string, step session.Step) (session.Session, error) {
	return s.mutate(id, func(sess *session.Session) error {
		if !step.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidStep, step)
		}
		if sess.Status == session.StatusGenerating {
			return ErrGenerationInFlight
		}
		if step == session.StepGenerated && sess.Result == nil {
			return ErrNoArtifacts
		}
		if step > session.StepDetails {
			if err := sess.Config.Validate(); err != nil {
				return err
			}
		}
		sess.Step = step
		return nil
	})
}

// Generate validates the session config and runs the pipeline once. A
// second call while one is running fails with ErrGenerationInFlight. On
// success the session moves to the generated step; on failure the user
// facing message is stored and the session stays on review.
//
// Once issued, the completion request runs to completion or failure: the
// caller's cancellation and deadline are not passed on.
func (s *Service) Generate(ctx context.Context, id string) (session.Session, error) {
	var (
		snapshot token.Config
		run      uint64
	)
	sess, err := s.mutate(id, func(sess *session.Session) error {
		if sess.Status == session.StatusGenerating {
			return ErrGenerationInFlight
		}
		if err := sess.Config.Validate(); err != nil {
			return err
		}
		sess.Status = session.StatusGenerating
		sess.Step = session.StepReview
		sess.Error = ""
		sess.Result = nil
		sess.Run++
		snapshot = sess.Config.Clone()
		run = sess.Run
		return nil
	})
	if err != nil {
		return sess, err
	}

	res, genErr := s.generator.Generate(llm.WithPhase(context.WithoutCancel(ctx), id), snapshot)

	s.mu.Lock()
	cur, err := s.store.Get(id)
	if err != nil {
		s.mu.Unlock()
		s.log.Info("discarding generation for removed session", zap.String("session", id), zap.Uint64("run", run))
		return session.Session{}, err
	}
	if cur.Run != run {
		s.mu.Unlock()
		s.log.Info("discarding stale generation", zap.String("session", id), zap.Uint64("run", run))
		return cur, nil
	}
	if genErr != nil {
		cur.Status = session.StatusFailed
		cur.Error = userMessage(genErr)
	} else {
		cur.Status = session.StatusReady
		cur.Result = &res
		cur.Step = session.StepGenerated
	}
	cur.UpdatedAt = s.now()
	s.store.Put(cur)
	s.mu.Unlock()

	s.events.publish(id, eventFor(cur))
	return cur, genErr
}

// Reset returns to the first step and discards artifacts and errors. The
// configuration is kept. An in-flight generation is not cancelled; its
// result is dropped when it arrives.
func (s *Service) Reset(_ context.Context, id string) (session.Session, error) {
	return s.mutate(id, func(sess *session.Session) error {
		sess.Step = session.StepDetails
		sess.Status = session.StatusIdle
		sess.Result = nil
		sess.Error = ""
		sess.Run++
		return nil
	})
}

// Delete removes a session.
func (s *Service) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	if _, err := s.store.Get(id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.store.Delete(id)
	s.mu.Unlock()
	s.events.close(strings.TrimSpace(id))
	return nil
}

// ExportedFile is one artifact copied to the artifact store.
type ExportedFile struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
	Size int    `json:"size"`
}

type Export struct {
	ID    string         `json:"id"`
	Files []ExportedFile `json:"files"`
}

// Export copies the current artifacts to the artifact store.
func (s *Service) Export(ctx context.Context, id string) (Export, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return Export{}, err
	}
	if sess.Result == nil {
		return Export{}, ErrNoArtifacts
	}
	exportID := fmt.Sprintf("%s-run-%d", sess.ID, sess.Run)
	out := Export{ID: exportID}
	files := sess.Result.Artifacts.Files()
	for _, p := range []string{codegen.ProgramPath, codegen.ManifestPath, codegen.DeploymentPath} {
		content := files[p]
		if err := s.artifacts.Put(ctx, exportID, p, []byte(content)); err != nil {
			return Export{}, fmt.Errorf("export %s: %w", p, err)
		}
		url, err := s.artifacts.GetURL(ctx, exportID, p)
		if err != nil {
			s.log.Warn("artifact url unavailable", zap.String("export", exportID), zap.String("path", p), zap.Error(err))
		}
		out.Files = append(out.Files, ExportedFile{Path: p, URL: url, Size: len(content)})
	}
	s.log.Info("artifacts exported", zap.String("session", sess.ID), zap.String("export", exportID))
	return out, nil
}

// ReadExport returns one exported file.
func (s *Service) ReadExport(ctx context.Context, exportID, p string) ([]byte, error) {
	return s.artifacts.Get(ctx, exportID, p)
}

// LookupExport lists the files of an earlier export for the copy-out
// screen. An export with no files is ErrNotFound.
func (s *Service) LookupExport(ctx context.Context, exportID string) (Export, error) {
	paths, err := s.artifacts.List(ctx, exportID)
	if err != nil {
		return Export{}, err
	}
	if len(paths) == 0 {
		return Export{}, artifact.ErrNotFound
	}
	out := Export{ID: strings.TrimSpace(exportID)}
	for _, p := range paths {
		data, err := s.artifacts.Get(ctx, out.ID, p)
		if err != nil {
			return Export{}, fmt.Errorf("read %s: %w", p, err)
		}
		url, err := s.artifacts.GetURL(ctx, out.ID, p)
		if err != nil {
			s.log.Warn("artifact url unavailable", zap.String("export", out.ID), zap.String("path", p), zap.Error(err))
		}
		out.Files = append(out.Files, ExportedFile{Path: p, URL: url, Size: len(data)})
	}
	return out, nil
}

// Subscribe streams status events for a session until ctx is done or the
// session is deleted. The current state is delivered first.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan Event, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ch := s.events.subscribe(ctx, sess.ID)
	s.events.deliver(ch, eventFor(sess))
	return ch, nil
}

func (s *Service) mutate(id string, fn func(*session.Session) error) (session.Session, error) {
	s.mu.Lock()
	sess, err := s.store.Get(id)
	if err != nil {
		s.mu.Unlock()
		return session.Session{}, err
	}
	before := sess.Clone()
	if err := fn(&sess); err != nil {
		s.mu.Unlock()
		return before, err
	}
	sess.UpdatedAt = s.now()
	s.store.Put(sess)
	s.mu.Unlock()

	s.events.publish(sess.ID, eventFor(sess))
	return sess, nil
}

// userMessage picks the text shown to the user for a generation failure.
func userMessage(err error) string {
	var (
		empty *llm.EmptyResponseError
		up    *llm.UpstreamError
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &up):
		return err.Error()
	default:
		return "An unknown error occurred while generating the code."
	}
}
