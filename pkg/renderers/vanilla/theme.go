package vanilla

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// rendererTheme is the resolved theme payload baked into the rendered form:
// data attributes on the root element plus a :root CSS-variable block.
type rendererTheme struct {
	Name         string
	Variant      string
	Tokens       map[string]string
	CSSVars      map[string]string
	CSSVarsStyle string
	AssetURL     func(string) string
}

func buildTheme(cfg *theme.RendererConfig) rendererTheme {
	if cfg == nil {
		return rendererTheme{}
	}
	t := rendererTheme{
		Name:     cfg.Theme,
		Variant:  cfg.Variant,
		Tokens:   copyStringMap(cfg.Tokens),
		CSSVars:  copyStringMap(cfg.CSSVars),
		AssetURL: cfg.AssetURL,
	}
	t.CSSVarsStyle = cssVarsStyle(t.CSSVars)
	return t
}

// tokenClass returns the class token registered under key, if any.
func (t rendererTheme) tokenClass(key string) string {
	if len(t.Tokens) == 0 {
		return ""
	}
	return t.Tokens[key]
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
