// internal/app/features/errors/errorlog.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with a rendered error page so
// handlers report failures with one call instead of a log-then-render pair.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogBadRequest logs a client error and renders the error page with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, zap.String("path", r.URL.Path), zap.Error(err))
	w.WriteHeader(http.StatusBadRequest)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogForbidden logs a denied action and renders the error page with userMsg.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, zap.String("path", r.URL.Path), zap.Error(err))
	w.WriteHeader(http.StatusForbidden)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogNotFound logs a missing resource and renders the error page with userMsg.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, zap.String("path", r.URL.Path), zap.Error(err))
	w.WriteHeader(http.StatusNotFound)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogServerError logs a server-side failure and renders the error page with
// userMsg. The underlying error never reaches the response body.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg, zap.String("path", r.URL.Path), zap.Error(err))
	w.WriteHeader(http.StatusInternalServerError)
	RenderForbidden(w, r, userMsg, backURL)
}
