// compression.go - gzip response compression for clients that accept it.
package server

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// compressionMiddleware gzips responses above gzhttp's default minimum size
// when the client sends Accept-Encoding: gzip.
func compressionMiddleware(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
