// Package web contains the embedded static assets of the viewer UI.
package web

import "embed"

//go:embed index.html css/* js/*

// Assets contains the embedded frontend files.
var Assets embed.FS
