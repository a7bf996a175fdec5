package shopdesk

import "embed"

// EmbeddedAssets contains the admin UI assets served under /admin/assets/:
// admin.js (section drag-and-drop, toggles, add and copy) and admin.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
