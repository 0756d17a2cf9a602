package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes response compression.
type BrotliConfig struct {
	Quality   int
	Skipper   func(c *gin.Context) bool
	MinLength int
	// ExcludedPrefixes lists path prefixes that are never compressed.
	ExcludedPrefixes []string
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:          brotli.DefaultCompression,
	MinLength:        1024,
	ExcludedPrefixes: []string{"/ws/", "/health"},
}

type encodeMode int

const (
	modePending encodeMode = iota
	modePlain
	modeBrotli
)

// brotliWriter holds back the body until it knows whether the response is
// large enough to compress. Once decided, the mode never changes.
type brotliWriter struct {
	gin.ResponseWriter
	writer    *brotli.Writer
	buf       []byte
	minLength int
	mode      encodeMode
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	switch bw.mode {
	case modePlain:
		return bw.ResponseWriter.Write(data)
	case modeBrotli:
		if _, err := bw.writer.Write(data); err != nil {
			return 0, err
		}
		return len(data), nil
	}

	bw.buf = append(bw.buf, data...)
	if len(bw.buf) < bw.minLength {
		return len(data), nil
	}

	bw.mode = modeBrotli
	header := bw.ResponseWriter.Header()
	header.Set("Content-Encoding", "br")
	header.Del("Content-Length")
	_, err := bw.writer.Write(bw.buf)
	bw.buf = nil
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// Flush sends what is buffered. A response still pending is committed to
// plain output, since the client may already be reading it.
func (bw *brotliWriter) Flush() {
	switch bw.mode {
	case modeBrotli:
		_ = bw.writer.Flush()
	case modePending:
		_ = bw.settlePlain()
	}
	bw.ResponseWriter.Flush()
}

func (bw *brotliWriter) settlePlain() error {
	bw.mode = modePlain
	if len(bw.buf) == 0 {
		return nil
	}
	_, err := bw.ResponseWriter.Write(bw.buf)
	bw.buf = nil
	return err
}

// finish terminates the body in whatever mode it ended up in.
func (bw *brotliWriter) finish() error {
	switch bw.mode {
	case modeBrotli:
		return bw.writer.Close()
	case modePending:
		return bw.settlePlain()
	}
	return nil
}

// Brotli compresses responses for clients that accept "br".
func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if isStreaming(c) || hasPrefix(c.Request.URL.Path, cfg.ExcludedPrefixes) ||
			(cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			minLength:      cfg.MinLength,
			writer:         brotli.NewWriterLevel(c.Writer, cfg.Quality),
		}

		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Writer = bw
		c.Next()
	}
}

// isStreaming reports requests whose responses must pass through unwrapped:
// event streams and WebSocket upgrades.
func isStreaming(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream") ||
		strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
