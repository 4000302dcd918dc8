package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"veilcredit/internal/oracle"
	dErrors "veilcredit/pkg/domain-errors"
)

type CertificateSuite struct {
	suite.Suite
	now       time.Time
	expiresAt time.Time
}

func TestCertificateSuite(t *testing.T) {
	suite.Run(t, new(CertificateSuite))
}

func (s *CertificateSuite) SetupTest() {
	s.now = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	s.expiresAt = s.now.Add(365 * 24 * time.Hour)
}

func (s *CertificateSuite) newCertificate() *Certificate {
	cert, err := NewCertificate("c1", oracle.EncryptedHandle{0x01, 0x02}, 42, "alice", s.now, s.expiresAt)
	require.NoError(s.T(), err)
	return cert
}

func (s *CertificateSuite) TestNewCertificate() {
	cert := s.newCertificate()
	assert.Equal(s.T(), "c1", cert.ID)
	assert.Equal(s.T(), "alice", cert.Owner)
	assert.False(s.T(), cert.Retired)
	assert.False(s.T(), cert.Revealed)
	assert.Nil(s.T(), cert.ClearAmount)
}

func (s *CertificateSuite) TestNewCertificateValidation() {
	tests := []struct {
		name      string
		id        string
		handle    oracle.EncryptedHandle
		owner     string
		expiresAt time.Time
		wantCode  dErrors.Code
	}{
		{"empty id", "", oracle.EncryptedHandle{0x01}, "alice", s.expiresAt, dErrors.CodeInvariantViolation},
		{"empty owner", "c1", oracle.EncryptedHandle{0x01}, "", s.expiresAt, dErrors.CodeInvariantViolation},
		{"empty handle", "c1", nil, "alice", s.expiresAt, dErrors.CodeInvariantViolation},
		{"expiry before now", "c1", oracle.EncryptedHandle{0x01}, "alice", s.now.Add(-time.Hour), dErrors.CodeInvalidInput},
		{"expiry equals now", "c1", oracle.EncryptedHandle{0x01}, "alice", s.now, dErrors.CodeInvalidInput},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := NewCertificate(tt.id, tt.handle, 42, tt.owner, s.now, tt.expiresAt)
			require.Error(s.T(), err)
			assert.True(s.T(), dErrors.Is(err, tt.wantCode))
		})
	}
}

func (s *CertificateSuite) TestRetireTransition() {
	cert := s.newCertificate()

	require.NoError(s.T(), cert.CanRetire("alice", s.now))
	cert.ApplyRetirement(s.now)

	assert.True(s.T(), cert.Retired)
	require.NotNil(s.T(), cert.RetiredAt)
	assert.Equal(s.T(), s.now, *cert.RetiredAt)

	err := cert.CanRetire("alice", s.now)
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeInvalidState))
}

func (s *CertificateSuite) TestRetireRequiresOwner() {
	cert := s.newCertificate()
	err := cert.CanRetire("mallory", s.now)
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeUnauthorized))
	assert.False(s.T(), cert.Retired)
}

func (s *CertificateSuite) TestRetireAfterExpiry() {
	cert := s.newCertificate()
	err := cert.CanRetire("alice", s.expiresAt)
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeExpired))

	err = cert.CanRetire("alice", s.expiresAt.Add(time.Hour))
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeExpired))
}

func (s *CertificateSuite) TestAlreadyRetiredWinsOverOwnership() {
	// A retired certificate reports invalid state even to a non-owner, so the
	// error does not leak which check failed first.
	cert := s.newCertificate()
	cert.ApplyRetirement(s.now)

	err := cert.CanRetire("mallory", s.now)
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeInvalidState))
}

func (s *CertificateSuite) TestRevealTransition() {
	cert := s.newCertificate()

	require.NoError(s.T(), cert.CanReveal())
	cert.ApplyReveal(50)

	assert.True(s.T(), cert.Revealed)
	require.NotNil(s.T(), cert.ClearAmount)
	assert.Equal(s.T(), uint64(50), *cert.ClearAmount)

	err := cert.CanReveal()
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeInvalidState))
}

func (s *CertificateSuite) TestRevealAllowedAfterExpiryAndRetirement() {
	// Reveal and retirement are independent markers; expiry gates retirement only.
	cert := s.newCertificate()
	cert.ApplyRetirement(s.now)

	assert.NoError(s.T(), cert.CanReveal())
}

func (s *CertificateSuite) TestIsExpired() {
	cert := s.newCertificate()
	assert.False(s.T(), cert.IsExpired(s.now))
	assert.False(s.T(), cert.IsExpired(s.expiresAt.Add(-time.Second)))
	assert.True(s.T(), cert.IsExpired(s.expiresAt))
	assert.True(s.T(), cert.IsExpired(s.expiresAt.Add(time.Second)))
}

func (s *CertificateSuite) TestCloneIsolation() {
	cert := s.newCertificate()
	cert.ApplyReveal(50)

	clone := cert.Clone()
	clone.EncryptedAmount[0] = 0xff
	*clone.ClearAmount = 99

	assert.Equal(s.T(), byte(0x01), cert.EncryptedAmount[0])
	assert.Equal(s.T(), uint64(50), *cert.ClearAmount)
}
