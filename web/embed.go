// Package web embeds the single page used to record clips and play stories.
package web

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var index []byte

// IndexHandler serves the embedded page.
func IndexHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(index)
	})
}
