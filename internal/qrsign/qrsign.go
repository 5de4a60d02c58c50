package qrsign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	apperrors "go-ticketing-platform/pkg/app_errors"
)

// SignatureLength QR payload 中簽章的十六進位字元數
const SignatureLength = 16

// Signer 以注入的密鑰對票號簽章與驗證。
// payload 格式固定為 "<ticket_number>:<16-hex-signature>"，
// 與既有掃描器互通，不可變更。
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign 計算票號的 HMAC-SHA256，截斷為 16 個十六進位字元
func (s *Signer) Sign(ticketNumber string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(ticketNumber))
	return hex.EncodeToString(mac.Sum(nil))[:SignatureLength]
}

// Credential 組出 QR payload
func (s *Signer) Credential(ticketNumber string) string {
	return ticketNumber + ":" + s.Sign(ticketNumber)
}

// Verify 驗證 payload 並回傳其中的票號。
// 格式錯誤或簽章不符一律回傳 ErrInvalidCredential，不會 panic。
func (s *Signer) Verify(payload string) (string, error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 2 {
		return "", apperrors.ErrInvalidCredential
	}

	ticketNumber, signature := parts[0], parts[1]
	if ticketNumber == "" || len(signature) != SignatureLength {
		return "", apperrors.ErrInvalidCredential
	}

	expected := s.Sign(ticketNumber)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", apperrors.ErrInvalidCredential
	}

	return ticketNumber, nil
}
