package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages so
// handlers can report a failure in one call: the operator sees the
// real error in the logs, the user sees a friendly page.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

func (l *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	return fields
}

// LogServerError logs the error and renders a 500 page with userMsg.
func (l *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	l.log.Error(logMsg, l.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs the error and renders a 400 page with userMsg.
func (l *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	l.log.Warn(logMsg, l.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// HTMXLogServerError logs the error and sends a plain-text fragment
// suitable for an HTMX swap target instead of a full page.
func (l *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	l.log.Error(logMsg, l.fields(r, err)...)
	http.Error(w, userMsg, http.StatusInternalServerError)
}

// HTMXLogBadRequest logs the error and sends a plain-text fragment
// suitable for an HTMX swap target instead of a full page.
func (l *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	l.log.Warn(logMsg, l.fields(r, err)...)
	http.Error(w, userMsg, http.StatusBadRequest)
}
