package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// GenerateETag returns a strong ETag for content
func GenerateETag(content []byte) string {
	hash := sha256.Sum256(content)
	return fmt.Sprintf(`"%s"`, hex.EncodeToString(hash[:16]))
}

// MatchesETag reports whether an If-None-Match header value matches etag.
// Comparison is weak: W/ prefixes are ignored.
func MatchesETag(etag, ifNoneMatch string) bool {
	if strings.TrimSpace(ifNoneMatch) == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}

// ETag buffers successful GET responses, tags them with a content hash and
// answers 304 Not Modified when the client already holds that version
func ETag() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			bw := &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(bw, r)

			if bw.status != http.StatusOK {
				w.WriteHeader(bw.status)
				w.Write(bw.body.Bytes())
				return
			}

			etag := GenerateETag(bw.body.Bytes())
			w.Header().Set("ETag", etag)
			if match := r.Header.Get("If-None-Match"); match != "" && MatchesETag(etag, match) {
				w.WriteHeader(http.StatusNotModified)
				return
			}

			w.WriteHeader(http.StatusOK)
			w.Write(bw.body.Bytes())
		})
	}
}

// bufferedWriter holds the body and status until the handler returns.
// Headers go straight to the wrapped writer.
type bufferedWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (w *bufferedWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.body.Write(b)
}
