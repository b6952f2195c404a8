package web

import "embed"

// TemplatesFS embeds HTML templates for the dashboard.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets.
//
//go:embed static/*
var StaticFS embed.FS
