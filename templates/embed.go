// Package templates embeds the default invoice email templates.
package templates

import "embed"

// FS contains the markdown templates and HTML layouts shipped with the
// module. Pass it to mailer.NewRenderer, or overlay your own fs.FS to
// customize individual templates.
//
//go:embed *.md layouts/*.html
var FS embed.FS
