package middlewares

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/npavlov/go-luhn-service/internal/logger"
)

const (
	maxLoggedBody = 1 << 10
	visibleDigits = 4
)

// Card-like digit runs; shorter ones such as counts and lengths are left alone.
var longNumber = regexp.MustCompile(`\d{12,}`)

// LoggingMiddleware writes one access log line per request. Only the first
// KiB of a request body is buffered for the log line, with long digit runs
// masked down to their last four digits.
func LoggingMiddleware(log *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			start := time.Now()

			var body string
			if request.Body != nil && request.Body != http.NoBody {
				original := request.Body
				head, _ := io.ReadAll(io.LimitReader(original, maxLoggedBody))
				body = MaskNumbers(logPrefix(head))
				request.Body = replayBody{
					Reader: io.MultiReader(bytes.NewReader(head), original),
					Closer: original,
				}
			}

			ww := middleware.NewWrapResponseWriter(response, request.ProtoMajor)

			defer func() {
				status := ww.Status()
				event := logger.GetWithTrace(request.Context(), log).WithLevel(levelFor(status))

				event.
					Str("method", request.Method).
					Str("url", MaskNumbers(request.URL.String())).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Str("remote", request.RemoteAddr).
					Str("requestID", GetRequestID(request.Context())).
					Dur("duration", time.Since(start)).
					Str("body", body).
					Msg("HTTP Request")
			}()

			next.ServeHTTP(ww, request)
		})
	}
}

// MaskNumbers replaces all but the last four digits of every run of 12 or more digits.
func MaskNumbers(s string) string {
	return longNumber.ReplaceAllStringFunc(s, func(number string) string {
		hidden := len(number) - visibleDigits

		return strings.Repeat("*", hidden) + number[hidden:]
	})
}

func levelFor(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// logPrefix drops a trailing digit run cut at the read limit so a partial
// number never escapes masking.
func logPrefix(head []byte) string {
	if len(head) < maxLoggedBody {
		return string(head)
	}

	return strings.TrimRight(string(head), "0123456789")
}

// replayBody hands the already logged prefix back to the handler ahead of the
// unread remainder.
type replayBody struct {
	io.Reader
	io.Closer
}
