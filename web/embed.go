// Package web embeds the static assets (CSS, JS) served at /static/ for
// both the admin panel and the storefront.
package web

import "embed"

//go:embed all:static
var StaticFS embed.FS
