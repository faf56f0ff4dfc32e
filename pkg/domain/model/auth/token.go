package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// TokenID identifies a stored session token
type TokenID string

// TokenSecret is the bearer secret presented by the client
type TokenSecret string

// Token is a server-side session issued after the external identity
// provider has vouched for a responsible. Only the secret hash is stored.
type Token struct {
	ID         TokenID
	Sub        types.ResponsibleID
	SecretHash string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

const tokenTTL = 24 * time.Hour

// NewToken mints a session token for the responsible and returns the token
// together with the plaintext secret (which is never persisted).
func NewToken(sub types.ResponsibleID) (*Token, TokenSecret, error) {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, "", goerr.Wrap(err, "failed to generate token ID")
	}
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, "", goerr.Wrap(err, "failed to generate token secret")
	}

	secret := TokenSecret(hex.EncodeToString(secretBytes))
	now := time.Now().UTC()
	token := &Token{
		ID:         TokenID(hex.EncodeToString(idBytes)),
		Sub:        sub,
		SecretHash: hashSecret(secret),
		ExpiresAt:  now.Add(tokenTTL),
		CreatedAt:  now,
	}
	return token, secret, nil
}

// Verify checks the presented secret against the stored hash and expiry
func (t *Token) Verify(secret TokenSecret, now time.Time) error {
	if now.After(t.ExpiresAt) {
		return goerr.New("token expired", goerr.V("token_id", t.ID))
	}
	expected := []byte(t.SecretHash)
	actual := []byte(hashSecret(secret))
	if subtle.ConstantTimeCompare(expected, actual) != 1 {
		return goerr.New("token secret mismatch", goerr.V("token_id", t.ID))
	}
	return nil
}

func hashSecret(secret TokenSecret) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
