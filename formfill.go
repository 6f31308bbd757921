// Package formfill re-exports the engine's main entry points so applications
// can render, validate, and serve forms without importing each subpackage.
package formfill

import (
	"context"
	"io/fs"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/openapi"
	"github.com/vstopensource/formfill/pkg/render"
	"github.com/vstopensource/formfill/pkg/renderers/tui"
	"github.com/vstopensource/formfill/pkg/renderers/vanilla"
)

// FormSchema aliases the declarative form description.
type FormSchema = model.FormSchema

// FieldDef aliases one field definition within a form.
type FieldDef = model.FieldDef

// RenderOptions describes per-render overrides: current values, server-side
// validation feedback, and the member profile auto-fetch resolves against.
type RenderOptions = render.Options

// NewRegistry returns a renderer registry prewired with the built-in
// renderers: "vanilla" (HTML) and "tui" (interactive terminal).
func NewRegistry() *render.Registry {
	reg := render.NewRegistry()
	reg.MustRegister(vanilla.New())
	reg.MustRegister(tui.New())
	return reg
}

// RenderHTML renders a form schema to browser markup with the vanilla
// renderer. It is the simplest entry point for callers that just want HTML.
func RenderHTML(ctx context.Context, s FormSchema, opts RenderOptions, options ...vanilla.Option) ([]byte, error) {
	return vanilla.New(options...).Render(ctx, s, opts)
}

// ImportOperation bootstraps a draft form schema from one OpenAPI operation's
// request body.
func ImportOperation(ctx context.Context, doc []byte, operationID string) (FormSchema, error) {
	return openapi.New().Import(ctx, doc, operationID)
}

// RuntimeAssetsFS exposes the embedded stylesheet and browser runtime so
// applications can serve them without a frontend build step.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServer(http.FS(formfill.RuntimeAssetsFS())),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
