package mocks

import (
	"sync"

	"github.com/you/rentauthsvc/domain"
)

// SentEmail records one delivery attempt made through the mock
type SentEmail struct {
	Kind  string
	To    string
	Token string
}

// MockMailer implements domain.Mailer interface for testing. Deliveries are
// recorded so tests can assert on them.
type MockMailer struct {
	SendVerificationEmailFunc  func(to, token string) error
	SendPasswordResetEmailFunc func(to, token string) error

	mu   sync.Mutex
	Sent []SentEmail
}

// NewMockMailer creates a new MockMailer with default behaviors
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// SendVerificationEmail records a verification email
func (m *MockMailer) SendVerificationEmail(to, token string) error {
	if m.SendVerificationEmailFunc != nil {
		return m.SendVerificationEmailFunc(to, token)
	}
	m.record(SentEmail{Kind: "verification", To: to, Token: token})
	return nil
}

// SendPasswordResetEmail records a password reset email
func (m *MockMailer) SendPasswordResetEmail(to, token string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(to, token)
	}
	m.record(SentEmail{Kind: "password_reset", To: to, Token: token})
	return nil
}

func (m *MockMailer) record(e SentEmail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, e)
}

// Compile-time interface compliance verification
var _ domain.Mailer = (*MockMailer)(nil)
