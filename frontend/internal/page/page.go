// Package page embeds the static page the client document is built from.
package page

import (
	"bytes"
	"embed"
	"io/fs"

	"github.com/mergington/activities/frontend/internal/dom"
)

//go:embed index.html
var indexHTML []byte

//go:embed static
var static embed.FS

// Document parses a fresh copy of the page.
func Document() (*dom.Document, error) {
	return dom.Parse(bytes.NewReader(indexHTML))
}

// Static is the file system served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
