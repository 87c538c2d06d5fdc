package entity

import "time"

// Session sesión autenticada del servicio de auth. La aplicación solo la observa.
type Session struct {
	AccessToken  string    `yaml:"access_token"`
	RefreshToken string    `yaml:"refresh_token"`
	ExpiresAt    time.Time `yaml:"expires_at"`
	UserID       string    `yaml:"user_id"`
	Email        string    `yaml:"email"`
}

// Expired indica si el access token ya venció en now.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SameIdentity indica si ambas sesiones pertenecen al mismo usuario.
func (s *Session) SameIdentity(other *Session) bool {
	if s == nil || other == nil {
		return false
	}
	return s.UserID == other.UserID
}
