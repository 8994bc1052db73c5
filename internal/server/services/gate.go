package services

import (
	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/cryptox"
	"github.com/dmitrijs2005/guestgallery/internal/server/auth"
	"github.com/dmitrijs2005/guestgallery/internal/server/config"
	"github.com/dmitrijs2005/guestgallery/internal/server/metrics"
)

// GateService guards the whole site behind one shared password.
type GateService struct {
	secret       []byte
	password     string
	passwordHash string
	observer     metrics.Observer
}

// NewGateService constructs a GateService from the configured site password.
// When both a hash and a plain password are set the hash is used.
func NewGateService(cfg *config.Config, observer metrics.Observer) *GateService {
	if observer == nil {
		observer = metrics.Nop()
	}
	return &GateService{
		secret:       []byte(cfg.SessionSecret),
		password:     cfg.SitePassword,
		passwordHash: cfg.SitePasswordHash,
		observer:     observer,
	}
}

// Login checks password against the site password and returns a signed
// marker for the site-authenticated cookie.
func (s *GateService) Login(password string) (string, error) {
	ok, err := s.check(password)
	if err != nil {
		return "", err
	}
	s.observer.RecordGateLogin(ok)
	if !ok {
		return "", common.ErrInvalidPassword
	}
	return auth.GenerateGateToken(s.secret, auth.GateValidity)
}

func (s *GateService) check(password string) (bool, error) {
	switch {
	case s.passwordHash != "":
		return cryptox.VerifyPassword(s.passwordHash, []byte(password))
	case s.password != "":
		return cryptox.EqualSecret(s.password, password), nil
	default:
		return false, common.ErrGateNotConfigured
	}
}

// Allow decides whether a request carrying (or not) a marker cookie may see
// the site. It depends on nothing but its arguments and the signing secret.
func (s *GateService) Allow(present bool, value string) bool {
	if !present || value == "" {
		return false
	}
	return auth.ValidateGateToken(value, s.secret) == nil
}
