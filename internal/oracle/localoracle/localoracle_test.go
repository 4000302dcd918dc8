package localoracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"veilcredit/internal/oracle"
)

type LocalOracleSuite struct {
	suite.Suite
	oracle *Oracle
	ctx    context.Context
}

func TestLocalOracleSuite(t *testing.T) {
	suite.Run(t, new(LocalOracleSuite))
}

func (s *LocalOracleSuite) SetupTest() {
	s.oracle = New([]byte("test-secret"))
	s.ctx = context.Background()
}

func (s *LocalOracleSuite) TestEncryptProducesVerifiableInput() {
	handle, proof, err := s.oracle.Encrypt(50)
	s.Require().NoError(err)

	ok, err := s.oracle.VerifyCiphertext(s.ctx, handle, proof)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *LocalOracleSuite) TestTamperedAdmissionProofRejected() {
	handle, proof, err := s.oracle.Encrypt(50)
	s.Require().NoError(err)

	proof[0] ^= 0xff
	ok, err := s.oracle.VerifyCiphertext(s.ctx, handle, proof)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *LocalOracleSuite) TestDecryptRoundTrip() {
	handle, _, err := s.oracle.Encrypt(1234)
	s.Require().NoError(err)
	s.Require().NoError(s.oracle.AllowPublicDecryption(s.ctx, handle))

	clear, proof, err := s.oracle.Decrypt(handle)
	s.Require().NoError(err)

	ok, err := s.oracle.VerifyDecryption(s.ctx, handle, clear, proof)
	s.Require().NoError(err)
	s.True(ok)

	amount, err := oracle.DecodeAmount(clear)
	s.Require().NoError(err)
	s.Equal(uint64(1234), amount)
}

func (s *LocalOracleSuite) TestDecryptRefusesUnregisteredHandle() {
	handle, _, err := s.oracle.Encrypt(7)
	s.Require().NoError(err)

	_, _, err = s.oracle.Decrypt(handle)
	s.Require().Error(err)
}

func (s *LocalOracleSuite) TestClearValueSubstitutionRejected() {
	handle, _, err := s.oracle.Encrypt(50)
	s.Require().NoError(err)
	s.Require().NoError(s.oracle.AllowPublicDecryption(s.ctx, handle))

	_, proof, err := s.oracle.Decrypt(handle)
	s.Require().NoError(err)

	// A proof for the true value must not validate a different claimed value.
	ok, err := s.oracle.VerifyDecryption(s.ctx, handle, oracle.EncodeAmount(51), proof)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *LocalOracleSuite) TestDifferentSecretsDoNotCrossVerify() {
	other := New([]byte("other-secret"))
	handle, proof, err := s.oracle.Encrypt(50)
	s.Require().NoError(err)

	ok, err := other.VerifyCiphertext(s.ctx, handle, proof)
	s.Require().NoError(err)
	s.False(ok)
}
