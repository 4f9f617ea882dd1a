// Package templates holds the embedded checkout pages and browser script.
package templates

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"checkout-service/services"
)

//go:embed *.html
var pages embed.FS

//go:embed static
var static embed.FS

// Parse loads every page. Amounts are rendered with the money func, 2300 -> 23.00.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"money": services.FormatMinorUnits,
	}).ParseFS(pages, "*.html")
}

// Static serves the browser assets under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
