package handlers

import (
	"bytes"
	_ "embed"
	"net/http"
)

//go:embed assets/widget.js
var widgetJS []byte

// WidgetJSHandler serves the embeddable loader script. Customers drop a
// single script tag on their site; the loader injects the chat iframe.
type WidgetJSHandler struct {
	script []byte
}

// NewWidgetJSHandler bakes the public base URL into the loader so the
// script works without a data-base attribute.
func NewWidgetJSHandler(publicBaseURL string) *WidgetJSHandler {
	return &WidgetJSHandler{
		script: bytes.ReplaceAll(widgetJS, []byte("__BASE_URL__"), []byte(publicBaseURL)),
	}
}

func (h *WidgetJSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.script)
}
