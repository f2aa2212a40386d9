// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware is an HTTP middleware that logs incoming requests using Logrus.
// Logs the method, path, and duration of each request.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			method := r.Method

			next.ServeHTTP(w, r)

			duration := time.Since(start)
			logger.WithFields(logrus.Fields{
				"method":   method,
				"path":     path,
				"duration": duration,
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogConnect logs a newly accepted client connection on the given transport ("tcp", "ws").
func LogConnect(logger *logrus.Logger, remoteAddr, transport string) {
	logger.WithFields(logrus.Fields{
		"remote":    remoteAddr,
		"transport": transport,
	}).Debug("client connected")
}

// LogDisconnect logs a connection that went away before a response could be delivered.
func LogDisconnect(logger *logrus.Logger, remoteAddr, transport string, err error) {
	fields := logrus.Fields{
		"remote":    remoteAddr,
		"transport": transport,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("client disconnected")
}

// LogQuery logs one served query: its size on the wire and how long it took end to end.
func LogQuery(logger *logrus.Logger, remoteAddr, transport string, queryBytes, responseBytes int, duration time.Duration) {
	logger.WithFields(logrus.Fields{
		"remote":    remoteAddr,
		"transport": transport,
		"in":        queryBytes,
		"out":       responseBytes,
		"duration":  duration,
	}).Info("query served")
}
