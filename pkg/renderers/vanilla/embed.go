package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName    = "formfill.css"
	RuntimeScriptName = "formfill-runtime.js"
)

// AssetsFS exposes the embedded runtime asset bundle (CSS/JS) so callers can
// serve them over HTTP or copy them into their own asset pipeline.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// Stylesheet returns the default stylesheet contents, or an empty string if
// the bundle is missing it.
func Stylesheet() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(data)
}

// RuntimeScript returns the client runtime that re-evaluates conditional
// visibility and wires the interactive widgets.
func RuntimeScript() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+RuntimeScriptName)
	if err != nil {
		return ""
	}
	return string(data)
}
