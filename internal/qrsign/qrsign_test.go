package qrsign

import (
	"strings"
	"testing"

	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	signer := NewSigner("test-qr-secret")

	credential := signer.Credential("TKT1A2B3C4D5E6F")

	parts := strings.SplitN(credential, ":", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "TKT1A2B3C4D5E6F", parts[0])
	assert.Len(t, parts[1], SignatureLength)

	ticketNumber, err := signer.Verify(credential)
	require.NoError(t, err)
	assert.Equal(t, "TKT1A2B3C4D5E6F", ticketNumber)
}

func TestSigner_SignIsDeterministic(t *testing.T) {
	signer := NewSigner("test-qr-secret")

	assert.Equal(t, signer.Sign("TKT000000000001"), signer.Sign("TKT000000000001"))
	assert.NotEqual(t, signer.Sign("TKT000000000001"), signer.Sign("TKT000000000002"))
}

func TestSigner_Verify_Rejects(t *testing.T) {
	signer := NewSigner("test-qr-secret")
	valid := signer.Credential("TKT123")

	cases := []struct {
		name    string
		payload string
	}{
		{"Garbage", "garbage"},
		{"Empty", ""},
		{"TooManyParts", "a:b:c"},
		{"EmptyTicketNumber", ":" + signer.Sign("TKT123")},
		{"WrongSignature", "TKT123:deadbeefdeadbeef"},
		{"TruncatedSignature", "TKT123:" + signer.Sign("TKT123")[:8]},
		{"SignatureForOtherTicket", "TKT123:" + signer.Sign("TKT999")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := signer.Verify(tc.payload)
			assert.ErrorIs(t, err, apperrors.ErrInvalidCredential)
		})
	}

	// 不同密鑰簽出的 credential 必須被拒絕
	other := NewSigner("another-secret")
	_, err := other.Verify(valid)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredential)
}
