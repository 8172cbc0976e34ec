package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// MinSignatureHexLen is the minimum length at which an X-Signature value
// is treated as an HMAC signature rather than ignored in favor of the
// plaintext secret.
const MinSignatureHexLen = 16

// Authorizer gates postback requests.
type Authorizer interface {
	Authorize(rawBody []byte, plainSecret, signatureHex string) bool
}

// PostbackAuthenticator verifies that a postback sender knows the shared
// secret, either via an HMAC-SHA256 signature over the raw request body
// or via a plaintext secret field.
type PostbackAuthenticator struct {
	secret string
}

// NewPostbackAuthenticator builds an authenticator with the configured
// shared secret. An empty secret means authorization always fails.
func NewPostbackAuthenticator(secret string) *PostbackAuthenticator {
	return &PostbackAuthenticator{secret: secret}
}

// Authorize checks the supplied credentials. A signature of at least
// MinSignatureHexLen characters takes priority over the plaintext secret;
// signatures are verified against the exact wire bytes, so this must be
// called with the body before any JSON parsing has touched it.
func (a *PostbackAuthenticator) Authorize(rawBody []byte, plainSecret, signatureHex string) bool {
	if a.secret == "" {
		return false
	}
	if len(signatureHex) >= MinSignatureHexLen {
		return a.verifySignature(rawBody, signatureHex)
	}
	return plainSecret != "" && plainSecret == a.secret
}

func (a *PostbackAuthenticator) verifySignature(rawBody []byte, signatureHex string) bool {
	supplied, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(a.secret))
	mac.Write(rawBody)
	expected := mac.Sum(nil)
	if len(supplied) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare(supplied, expected) == 1
}
