// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrInvalidHash = errors.New("invalid password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var defaultArgon = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const saltLength = 16

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	p := defaultArgon
	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	p, salt, key, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

var dummyHash string

func init() {
	hash, err := HashPassword("timing-equalizer")
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
	}
	dummyHash = hash
}

// VerifyPasswordTimingSafe always pays for one argon2 derivation, so an
// unknown account costs the same as a wrong password. A nil or empty
// encodedHash never verifies.
func VerifyPasswordTimingSafe(password string, encodedHash *string) (bool, error) {
	if encodedHash == nil || *encodedHash == "" {
		//nolint:errcheck // result discarded, only the cost matters
		_, _ = VerifyPassword(password, dummyHash)
		return false, nil
	}

	return VerifyPassword(password, *encodedHash)
}

// NeedsRehash reports whether encodedHash was produced with other parameters
// than the current defaults.
func NeedsRehash(encodedHash string) bool {
	p, _, _, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}
	return *p != defaultArgon
}

func decodeHash(encodedHash string) (*argonParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: version: %w", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("%w: incompatible version %d", ErrInvalidHash, version)
	}

	p := &argonParams{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: params: %w", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: salt: %w", ErrInvalidHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: key: %w", ErrInvalidHash, err)
	}

	//nolint:gosec // G115: key length is always small
	p.keyLen = uint32(len(key))

	return p, salt, key, nil
}

// HashToken returns the hex SHA-256 digest stored in place of a refresh token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
