// Package web holds the single-page document workflow UI, compiled into the
// binary so `docparse serve` needs no asset directory.
package web

import (
	"embed"
	"io/fs"
	"sync"
)

// IndexFile is served for the root path and for unknown non-API paths.
const IndexFile = "index.html"

//go:embed all:dist
var embedded embed.FS

var (
	assetsOnce sync.Once
	assets     fs.FS
	assetsErr  error
)

// Assets returns the page assets rooted at dist, so "app.js" rather than
// "dist/app.js".
func Assets() (fs.FS, error) {
	assetsOnce.Do(func() {
		assets, assetsErr = fs.Sub(embedded, "dist")
	})
	return assets, assetsErr
}

// Index returns the contents of the workflow page.
func Index() ([]byte, error) {
	fsys, err := Assets()
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, IndexFile)
}

// Has reports whether name is a regular file among the assets.
func Has(name string) bool {
	fsys, err := Assets()
	if err != nil || name == "" {
		return false
	}
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}
