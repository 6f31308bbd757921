package render

import (
	"context"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/profile"
)

// Renderer converts a form schema into a byte representation (HTML for the
// browser surface, collected values for the TUI).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, schema model.FormSchema, options Options) ([]byte, error)
}

// Options carry per-render data: current values keyed by field id, server-side
// validation feedback, and the member profile auto-fetch fields resolve
// against.
type Options struct {
	Values  map[string]any
	Errors  map[string][]string
	Profile profile.Profile
}
