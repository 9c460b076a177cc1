package auth

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/pquerna/otp/hotp"
)

// ErrChallengeNotFound is returned for unknown or consumed challenges.
var ErrChallengeNotFound = errors.New("otp challenge not found")

// challenge is one pending second-factor exchange. The counter selects
// the currently valid HOTP code: a resend bumps it, which invalidates
// every previously issued code. Codes carry no expiry of their own; the
// pending-login token bounds the exchange instead.
type challenge struct {
	id      string
	email   string
	secret  string
	counter uint64
}

// ChallengeManager issues and verifies 6-digit OTP codes for the
// facility portal's second factor. Challenges live in process memory;
// they are consumed on successful verification.
type ChallengeManager struct {
	mu         sync.Mutex
	challenges map[string]*challenge
}

// NewChallengeManager builds an empty manager.
func NewChallengeManager() *ChallengeManager {
	return &ChallengeManager{challenges: make(map[string]*challenge)}
}

// Issue creates a challenge for the email and returns its ID plus the
// first valid code.
func (m *ChallengeManager) Issue(email string) (string, string, error) {
	secret, err := newHOTPSecret()
	if err != nil {
		return "", "", err
	}

	ch := &challenge{
		id:      uuid.NewString(),
		email:   email,
		secret:  secret,
		counter: 1,
	}

	code, err := hotp.GenerateCode(ch.secret, ch.counter)
	if err != nil {
		return "", "", err
	}

	m.mu.Lock()
	m.challenges[ch.id] = ch
	m.mu.Unlock()

	return ch.id, code, nil
}

// Resend regenerates the code for an open challenge. The previous code
// stops validating the moment the counter moves.
func (m *ChallengeManager) Resend(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.challenges[id]
	if !ok {
		return "", ErrChallengeNotFound
	}

	ch.counter++
	return hotp.GenerateCode(ch.secret, ch.counter)
}

// Verify checks a submitted code against the challenge's current counter
// only. A correct code consumes the challenge.
func (m *ChallengeManager) Verify(id, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.challenges[id]
	if !ok {
		return "", ErrChallengeNotFound
	}

	if !hotp.Validate(code, ch.counter, ch.secret) {
		return "", errors.New("code mismatch")
	}

	delete(m.challenges, id)
	return ch.email, nil
}

// Abandon discards a challenge without verification.
func (m *ChallengeManager) Abandon(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.challenges, id)
}

// newHOTPSecret mints a random base32 secret (20 bytes, RFC 4226 size).
func newHOTPSecret() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base32.StdEncoding.EncodeToString(raw), nil
}
