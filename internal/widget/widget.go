// Package widget serves the storefront confirmation script.
package widget

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
)

//go:embed assets/zelle-modal.js
var script []byte

// Path is where storefronts load the script from.
const Path = "/zelle-modal.js"

// Script returns the embedded asset.
func Script() []byte { return script }

// Handler serves one static asset with a strong ETag.
type Handler struct {
	body    []byte
	etag    string
	modTime time.Time
	MaxAge  time.Duration
}

// NewHandler returns a handler for the embedded widget script.
func NewHandler(maxAge time.Duration) *Handler {
	return newHandler(script, maxAge)
}

func newHandler(body []byte, maxAge time.Duration) *Handler {
	sum := sha256.Sum256(body)
	return &Handler{
		body:    body,
		etag:    `"` + hex.EncodeToString(sum[:16]) + `"`,
		modTime: time.Now().UTC(),
		MaxAge:  maxAge,
	}
}

// ETag returns the entity tag of the served script.
func (h *Handler) ETag() string { return h.etag }

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	headers := w.Header()
	headers.Set("ETag", h.etag)
	headers.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(h.MaxAge.Seconds())))
	headers.Set("Content-Type", "application/javascript; charset=utf-8")
	http.ServeContent(w, r, Path, h.modTime, bytes.NewReader(h.body))
}
