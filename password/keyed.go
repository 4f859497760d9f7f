// Package password implements the salted keyed-hash credential scheme. A
// stored record is "<salt> <hash>": a base64url salt, a single space, and
// the base64url Argon2id digest of the password keyed by that salt.
// Verification recomputes the exact record string and compares it in
// constant time.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
)

// ErrMalformedRecord is returned when a stored credential record does not
// have the "<salt> <hash>" shape. This is a data fault, not a mismatch.
var ErrMalformedRecord = errors.New("malformed credential record")

// Config holds Argon2id tuning parameters.
type Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Keyed hashes and verifies credential records. Instances are immutable
// after construction and safe for concurrent use.
type Keyed struct {
	config Config
}

// NewKeyed validates cfg and creates a [Keyed] hasher.
func NewKeyed(cfg Config) (*Keyed, error) {
	switch {
	case cfg.Memory < minMemoryKB:
		return nil, errors.New("password memory must be >= 8192 KB")
	case cfg.Time < minTimeCost:
		return nil, errors.New("password time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return nil, errors.New("password parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return nil, errors.New("password salt length must be >= 16")
	case cfg.KeyLength < minKeyLength:
		return nil, errors.New("password key length must be >= 16")
	}

	return &Keyed{config: cfg}, nil
}

// HashRecord draws a fresh salt and returns the stored record form of
// password.
func (k *Keyed) HashRecord(password string) (string, error) {
	salt := make([]byte, k.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	return k.record(password, salt), nil
}

// VerifyRecord recomputes the record for password using the stored salt and
// compares against record. A mismatch returns (false, nil): wrong passwords
// are an expected outcome, not a fault. Only a structurally invalid record
// produces an error.
func (k *Keyed) VerifyRecord(password, record string) (bool, error) {
	saltEncoded, _, ok := strings.Cut(record, " ")
	if !ok {
		return false, ErrMalformedRecord
	}

	salt, err := base64.RawURLEncoding.DecodeString(saltEncoded)
	if err != nil {
		return false, ErrMalformedRecord
	}

	computed := k.record(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(record)) == 1, nil
}

func (k *Keyed) record(password string, salt []byte) string {
	hash := argon2.IDKey(
		[]byte(password),
		salt,
		k.config.Time,
		k.config.Memory,
		k.config.Parallelism,
		k.config.KeyLength,
	)

	var b strings.Builder
	b.WriteString(base64.RawURLEncoding.EncodeToString(salt))
	b.WriteByte(' ')
	b.WriteString(base64.RawURLEncoding.EncodeToString(hash))
	return b.String()
}
