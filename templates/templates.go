// Package templates embeds the email templates sent by the notifier.
package templates

import "embed"

// Emails holds templates/emails/<name>[_<lang>].{html,txt}
//
//go:embed emails/*.html emails/*.txt
var Emails embed.FS
