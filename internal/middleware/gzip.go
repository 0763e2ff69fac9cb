package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"
)

// gzipWriter откладывает заголовки до первого Write: ответы без тела
// (редиректы) уходят без Content-Encoding.
type gzipWriter struct {
	http.ResponseWriter
	gz     *gzip.Writer
	status int
}

func (w *gzipWriter) WriteHeader(statusCode int) {
	if w.status == 0 {
		w.status = statusCode
	}
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	if w.gz == nil {
		h := w.Header()
		// длина сжатого тела другая
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		if w.status == 0 {
			w.status = http.StatusOK
		}
		w.ResponseWriter.WriteHeader(w.status)
		w.gz = gzip.NewWriter(w.ResponseWriter)
	}
	return w.gz.Write(b)
}

func (w *gzipWriter) close() error {
	if w.gz == nil {
		if w.status != 0 {
			w.ResponseWriter.WriteHeader(w.status)
		}
		return nil
	}
	return w.gz.Close()
}

// WithGzip сжимает ответ, если клиент прислал Accept-Encoding: gzip.
func WithGzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gw := &gzipWriter{ResponseWriter: w}
		defer func() {
			if err := gw.close(); err != nil {
				sugar.Warnw("gzip: close failed", "error", err)
			}
		}()
		next.ServeHTTP(gw, r)
	})
}
