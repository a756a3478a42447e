package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netplan/pkg/api/middleware"
)

// panicRecoveryMiddleware recovers from panics in HTTP handlers
func (s *Server) panicRecoveryMiddleware(next http.Handler) http.Handler {
	return middleware.PanicRecovery(s.logger)(next)
}

// loggingMiddleware logs HTTP requests with timing information
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return middleware.Logging(s.logger)(next)
}

// corsMiddleware handles Cross-Origin Resource Sharing
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return middleware.CORS(middleware.CORSConfigForOrigins(s.config.CORSOrigins))(next)
}

// bodySizeLimitMiddleware limits the size of incoming request bodies
func (s *Server) bodySizeLimitMiddleware(next http.Handler) http.Handler {
	return middleware.BodySizeLimit(s.config.MaxBodyBytes)(next)
}

// requestIDMiddleware adds a unique request ID to each request
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return middleware.RequestID()(next)
}

// securityHeadersMiddleware adds security headers to responses
func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return middleware.SecurityHeaders(&middleware.SecurityHeadersConfig{})(next)
}

// timeoutMiddleware bounds the time a handler may take
func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return middleware.Timeout(s.config.RequestTimeout)(next)
}

// metricsMiddleware tracks HTTP request metrics. It must wrap the mux itself
// so the matched route pattern is known.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return middleware.Metrics(metricsRecorder{s.metricsRegistry})(next)
}

// chain applies the middleware stack, outermost first
func (s *Server) chain(mux http.Handler) http.Handler {
	h := s.metricsMiddleware(mux)
	h = s.timeoutMiddleware(h)
	h = s.bodySizeLimitMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.securityHeadersMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.requestIDMiddleware(h)
	return s.panicRecoveryMiddleware(h)
}
