// Package session holds the per-page-load state: which form is being filled,
// by whom, since when, and which view the page is in. Every collaborator is
// injected at construction; nothing here reaches for process-wide state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/profile"
	"github.com/vstopensource/formfill/pkg/schema"
	"github.com/vstopensource/formfill/pkg/store"
)

// Phase is the page's current view state.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseForm    Phase = "form"
	PhaseHistory Phase = "history"
	PhaseSuccess Phase = "success"
)

// ErrFormNotFound is reported when the requested form id has no document.
var ErrFormNotFound = errors.New("session: form not found")

type Option func(*Session)

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is one member's interaction with one form page, from load to
// submit or history view.
type Session struct {
	store    store.DocumentStore
	log      *slog.Logger
	now      func() time.Time
	identity profile.Identity

	schema    model.FormSchema
	profile   profile.Profile
	startedAt time.Time
	phase     Phase
	err       error
}

func New(st store.DocumentStore, ident profile.Identity, options ...Option) *Session {
	s := &Session{
		store:    st,
		log:      slog.Default(),
		now:      time.Now,
		identity: ident,
		phase:    PhaseLoading,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Load fetches the schema and member profile, checks availability, and moves
// the session to the form view. On failure the session lands in the error
// phase with the cause retained; the page renders the error panel instead of
// a stuck loading state.
func (s *Session) Load(ctx context.Context, formID string) error {
	doc, err := s.store.Get(ctx, store.CollectionForms, formID)
	if errors.Is(err, store.ErrNotFound) {
		return s.fail(fmt.Errorf("%w: %s", ErrFormNotFound, formID))
	}
	if err != nil {
		return s.fail(fmt.Errorf("session: load form %s: %w", formID, err))
	}

	form, err := schema.FromDocument(formID, doc)
	if err != nil {
		return s.fail(fmt.Errorf("session: parse form %s: %w", formID, err))
	}
	schema.ApplyDefaults(&form)

	if err := schema.CheckAvailable(form, s.now()); err != nil {
		return s.fail(err)
	}

	s.schema = form
	s.profile = profile.Load(ctx, s.store, s.identity, s.log)
	s.startedAt = s.now()
	s.phase = PhaseForm
	s.err = nil
	return nil
}

// ViewHistory switches a loaded session to the history view.
func (s *Session) ViewHistory() {
	if s.phase == PhaseForm {
		s.phase = PhaseHistory
	}
}

// Complete marks a successful submission.
func (s *Session) Complete() {
	if s.phase == PhaseForm {
		s.phase = PhaseSuccess
	}
}

func (s *Session) fail(err error) error {
	s.phase = PhaseError
	s.err = err
	return err
}

func (s *Session) Phase() Phase               { return s.phase }
func (s *Session) Err() error                 { return s.err }
func (s *Session) Schema() model.FormSchema   { return s.schema }
func (s *Session) Identity() profile.Identity { return s.identity }
func (s *Session) Profile() profile.Profile   { return s.profile }
func (s *Session) StartedAt() time.Time       { return s.startedAt }

// Redirect resolves the post-submit destination. An empty URL with reload
// true means stay on the page and reload it.
func (s *Session) Redirect() (url string, reload bool) {
	switch s.schema.Settings.RedirectType {
	case model.RedirectSamePage:
		return "", true
	case model.RedirectCustom:
		if s.schema.Settings.RedirectURL != "" {
			return s.schema.Settings.RedirectURL, false
		}
		return "/dashboard", false
	default:
		return "/dashboard", false
	}
}

// WaitReady polls the backing store until it answers or the context expires.
// A not-found answer still counts as ready; only transport failures keep the
// poll going. Callers treat an error as a degraded store and carry on.
func WaitReady(ctx context.Context, st store.DocumentStore, interval time.Duration) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		_, err := st.Get(ctx, store.CollectionForms, "__readiness_probe__")
		if err == nil || errors.Is(err, store.ErrNotFound) {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("session: store not ready: %w", errors.Join(ctx.Err(), lastErr))
		case <-ticker.C:
		}
	}
}
