package api

import (
	"fmt"
	"net/http"

	"github.com/dd0wney/cluso-netplan/pkg/logging"
)

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// httpServer creates the HTTP server with timeouts from configuration
func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Addr:         s.addr(),
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// logCORS reports the effective cross-origin policy at startup
func (s *Server) logCORS() {
	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		s.logger.Info("CORS: no origins configured, cross-origin requests disabled")
		return
	}
	for _, o := range origins {
		if o == "*" {
			s.logger.Warn("CORS allows all origins (*), not recommended for production")
			return
		}
	}
	s.logger.Info("CORS configured", logging.Count(len(origins)))
}
