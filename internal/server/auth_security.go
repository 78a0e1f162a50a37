package server

import (
	"context"
	"log"
)

// loginBlocked reports whether the IP used up its failed attempts. Store
// errors do not lock the admin out.
func (s *Server) loginBlocked(ctx context.Context, ip string) bool {
	blocked, err := s.LoginAttempts.Blocked(ctx, ip)
	if err != nil {
		log.Printf("login attempts lookup failed for %s: %v", ip, err)
		return false
	}
	return blocked
}

// recordLoginAttempt records a login attempt
func (s *Server) recordLoginAttempt(ctx context.Context, email, ip string, success bool) {
	if err := s.LoginAttempts.Record(ctx, email, ip, success); err != nil {
		log.Printf("failed to record login attempt for %s: %v", ip, err)
	}
}
