package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSignatureService implements ports.SignatureVerifier using HMAC-SHA256.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature verifier.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA256 of rawBody using secret.
// Returns lowercase hex-encoded signature.
func (s *HMACSignatureService) Sign(secret string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks if signature matches HMAC-SHA256(secret, rawBody).
// It operates over the exact raw bytes received and uses a constant-time
// comparison. Malformed input yields false, never an error.
func (s *HMACSignatureService) Verify(secret string, rawBody []byte, signature string) bool {
	expected := s.Sign(secret, rawBody)
	return hmac.Equal([]byte(expected), []byte(signature))
}
