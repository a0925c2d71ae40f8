// Package web bundles the HTML templates and static assets served by cmd/server.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var Static embed.FS
