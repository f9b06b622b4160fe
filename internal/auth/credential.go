package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLength is the size of the random salt in bytes.
	SaltLength = 16
	// Iterations is the PBKDF2 iteration count.
	Iterations = 65536
	// KeyLength is the size of the derived key in bytes (256 bits).
	KeyLength = 32

	delimiter = ":"
)

// ErrMalformedCredential is returned when a stored credential cannot be parsed.
var ErrMalformedCredential = errors.New("malformed credential")

// Credential is a salt and PBKDF2-HMAC-SHA256 derived key pair.
type Credential struct {
	Salt []byte
	Key  []byte
}

// HashPassword derives a credential from the password using a fresh random salt.
func HashPassword(password string) (Credential, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return Credential{}, fmt.Errorf("generate salt: %w", err)
	}
	return Credential{Salt: salt, Key: deriveKey(password, salt)}, nil
}

// VerifyPassword re-derives the key with the stored salt and compares it in constant time.
func VerifyPassword(password string, c Credential) bool {
	if len(c.Salt) == 0 || len(c.Key) == 0 {
		return false
	}
	candidate := deriveKey(password, c.Salt)
	return subtle.ConstantTimeCompare(candidate, c.Key) == 1
}

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeyLength, sha256.New)
}

// String serializes the credential as base64(salt):base64(key).
func (c Credential) String() string {
	return base64.StdEncoding.EncodeToString(c.Salt) + delimiter + base64.StdEncoding.EncodeToString(c.Key)
}

// ParseCredential parses a credential produced by Credential.String.
func ParseCredential(s string) (Credential, error) {
	if strings.Count(s, delimiter) != 1 {
		return Credential{}, fmt.Errorf("%w: expected exactly one delimiter", ErrMalformedCredential)
	}
	saltPart, keyPart, _ := strings.Cut(s, delimiter)

	salt, err := base64.StdEncoding.DecodeString(saltPart)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: salt: %v", ErrMalformedCredential, err)
	}
	key, err := base64.StdEncoding.DecodeString(keyPart)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: key: %v", ErrMalformedCredential, err)
	}
	if len(salt) != SaltLength || len(key) != KeyLength {
		return Credential{}, fmt.Errorf("%w: unexpected salt or key length", ErrMalformedCredential)
	}

	return Credential{Salt: salt, Key: key}, nil
}
