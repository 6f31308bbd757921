// Package submission turns validated answers into stored records: one
// immutable submission document per accepted answer set, plus a per-member
// tracking aggregate merged on every write.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/profile"
	"github.com/vstopensource/formfill/pkg/store"
	"github.com/vstopensource/formfill/pkg/validation"
	"github.com/vstopensource/formfill/pkg/visibility"
)

// ErrAlreadySubmitted is returned when the form forbids resubmission and the
// member has a prior accepted submission.
var ErrAlreadySubmitted = errors.New("submission: already submitted")

type Option func(*Pipeline)

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides submission id generation, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// Pipeline owns the write path for submissions.
type Pipeline struct {
	store store.DocumentStore
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

func New(st store.DocumentStore, options ...Option) *Pipeline {
	p := &Pipeline{
		store: st,
		log:   slog.Default(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Collect gathers the values that should be persisted. Conditionally hidden
// fields are excluded; display-hidden fields (the hidden attribute, hidden
// auto-fetch) keep their values. Empty values are dropped entirely rather
// than stored as blanks. Missing auto-fetch values are backfilled from the
// profile.
func Collect(s model.FormSchema, values map[string]any, prof profile.Profile) map[string]any {
	eval := visibility.New(s)
	out := make(map[string]any, len(values))
	for _, field := range s.Fields {
		kind := field.Type.Kind()
		if kind == model.KindPageBreak {
			continue
		}

		value := values[field.ID]
		if af := field.AutoFetch; af != nil && af.Enabled && model.IsEmptyValue(value) {
			if fetched := prof.Resolve(af.Field); fetched != "" {
				value = fetched
			}
		}

		displayHidden := field.Hidden || kind == model.KindHidden || autoFetchHidden(field, prof)
		if !displayHidden && !eval.Visible(field, values) {
			continue
		}
		if model.IsEmptyValue(value) {
			continue
		}
		out[field.ID] = value
	}
	return out
}

// Submit validates, collects, persists, and tracks one answer set. The
// returned record is the stored document. A tracking failure is logged and
// swallowed; the submission itself already succeeded.
func (p *Pipeline) Submit(ctx context.Context, s model.FormSchema, values map[string]any, ident profile.Identity, prof profile.Profile, startedAt time.Time) (model.SubmissionRecord, error) {
	if !s.Settings.AllowMultipleSubmissions {
		prior, err := p.hasPrior(ctx, s.ID, ident.UID)
		if err != nil {
			return model.SubmissionRecord{}, err
		}
		if prior {
			return model.SubmissionRecord{}, ErrAlreadySubmitted
		}
	}

	visible := visibility.New(s).VisibleSet(values)
	if err := validation.Validate(s, values, visible); err != nil {
		return model.SubmissionRecord{}, err
	}

	now := p.now().UTC()
	record := model.SubmissionRecord{
		ID:             p.newID(),
		FormID:         s.ID,
		SubmittedAt:    now,
		SubmittedBy:    ident.UID,
		UserID:         ident.UID,
		UserInfo:       prof.UserInfo(ident),
		Data:           Collect(s, values, prof),
		CompletionTime: completionSeconds(startedAt, now),
	}

	doc, err := store.Encode(record)
	if err != nil {
		return model.SubmissionRecord{}, fmt.Errorf("submission: encode record: %w", err)
	}
	if err := p.store.Set(ctx, store.CollectionSubmissions, record.ID, doc); err != nil {
		return model.SubmissionRecord{}, fmt.Errorf("submission: store record: %w", err)
	}

	if err := p.track(ctx, s, record); err != nil {
		p.log.Error("submission tracking update failed",
			"formId", s.ID, "userId", ident.UID, "error", err)
	}
	return record, nil
}

func (p *Pipeline) hasPrior(ctx context.Context, formID, userID string) (bool, error) {
	tracking, err := p.loadTracking(ctx, userID)
	if err != nil {
		return false, err
	}
	entry, ok := tracking.Submissions[formID]
	return ok && entry.Count > 0, nil
}

func (p *Pipeline) loadTracking(ctx context.Context, userID string) (model.TrackingRecord, error) {
	var tracking model.TrackingRecord
	doc, err := p.store.Get(ctx, store.CollectionTracking, userID)
	if errors.Is(err, store.ErrNotFound) {
		return tracking, nil
	}
	if err != nil {
		return tracking, fmt.Errorf("submission: load tracking: %w", err)
	}
	if err := store.Decode(doc, &tracking); err != nil {
		return tracking, fmt.Errorf("submission: load tracking: %w", err)
	}
	return tracking, nil
}

func (p *Pipeline) track(ctx context.Context, s model.FormSchema, record model.SubmissionRecord) error {
	tracking, err := p.loadTracking(ctx, record.UserID)
	if err != nil {
		return err
	}
	if tracking.Submissions == nil {
		tracking.Submissions = make(map[string]model.FormTracking)
	}

	entry := tracking.Submissions[s.ID]
	entry.Count++
	entry.SubmissionIDs = append(entry.SubmissionIDs, record.ID)
	entry.FormName = s.Name
	entry.CanResubmit = s.Settings.AllowMultipleSubmissions
	submittedAt := record.SubmittedAt
	entry.LastSubmittedAt = &submittedAt
	tracking.Submissions[s.ID] = entry
	tracking.LastUpdated = record.SubmittedAt

	doc, err := store.Encode(tracking)
	if err != nil {
		return err
	}
	return p.store.Merge(ctx, store.CollectionTracking, record.UserID, doc)
}

func completionSeconds(startedAt, now time.Time) int64 {
	if startedAt.IsZero() || now.Before(startedAt) {
		return 0
	}
	return int64(now.Sub(startedAt).Seconds())
}

func autoFetchHidden(field model.FieldDef, prof profile.Profile) bool {
	af := field.AutoFetch
	return af != nil && af.Enabled && af.Mode == model.AutoFetchHidden && prof.Resolve(af.Field) != ""
}
