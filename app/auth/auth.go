package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var ErrUnauthorized = errors.New("webhook credential rejected")

type Mode int32

const (
	// ModeOpen accepts every request. It is the posture when no webhook
	// secret is configured and is meant for initial setup and testing only:
	// anyone who can reach the endpoint can deliver webhooks.
	ModeOpen Mode = iota
	// ModeSharedSecret requires the presented credential to match the
	// configured secret exactly.
	ModeSharedSecret
)

// Authenticator validates that an inbound webhook request is entitled to
// mutate state. The mode is fixed at construction so the security posture is
// visible in one place instead of hiding behind an empty-string check.
type Authenticator struct {
	mode   Mode
	secret string
}

// NewAuthenticator derives the mode from the configured secret: empty means
// open mode.
func NewAuthenticator(secret string) *Authenticator {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &Authenticator{mode: ModeOpen}
	}
	return &Authenticator{mode: ModeSharedSecret, secret: secret}
}

func (a *Authenticator) Mode() Mode {
	return a.mode
}

// Authenticate checks the presented credential. The comparison is
// constant-time; a bearer prefix on the credential is tolerated.
func (a *Authenticator) Authenticate(credential string) error {
	if a.mode == ModeOpen {
		return nil
	}

	credential = strings.TrimSpace(credential)
	if lowered := strings.ToLower(credential); strings.HasPrefix(lowered, "bearer ") {
		credential = strings.TrimSpace(credential[len("bearer "):])
	}

	if subtle.ConstantTimeCompare([]byte(credential), []byte(a.secret)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
