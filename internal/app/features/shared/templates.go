// internal/app/features/shared/templates.go
package shared

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Embed the shared template files.
//
//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "shared",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
