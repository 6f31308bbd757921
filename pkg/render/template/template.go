package template

import (
	"io"
)

// Renderer is the seam the page chrome renders through: named templates for
// the form page shell, error panel, success panel, and history view. The
// contract is engine-agnostic; pongo2tpl provides the default implementation.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
