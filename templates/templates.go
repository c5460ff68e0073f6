// Package templates embeds the built-in email templates and the default
// markdown layout.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed *.html *.md
var files embed.FS

// FS returns the embedded templates.
func FS() fs.FS {
	return files
}
