package web

import "embed"

// StaticFS client page served at /
//
//go:embed index.html
var StaticFS embed.FS
