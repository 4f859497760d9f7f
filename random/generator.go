// Package random provides the concurrency-safe token byte source used for
// bearer token issuance. Token unforgeability depends entirely on this
// package's unpredictability: the stream is a BLAKE3 XOF keyed once from the
// operating system CSPRNG, so output remains cryptographic strength while
// staying reseedable for deterministic tests.
package random

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
)

const keySize = 32

// Generator produces base64url-encoded random strings. One instance is
// safely shared across concurrent callers: each call holds the stream for
// its full read, so two interleaved calls can never split or repeat bytes.
type Generator struct {
	mu  sync.Mutex
	xof io.Reader
}

// NewGenerator creates a [Generator] seeded once from crypto/rand.
func NewGenerator() (*Generator, error) {
	var key [keySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, err
	}

	g := &Generator{}
	if err := g.rekey(key); err != nil {
		return nil, err
	}
	return g, nil
}

// NewSeeded creates a [Generator] with a deterministic stream derived from
// seed. Tokens from a seeded generator are predictable; intended for tests.
func NewSeeded(seed []byte) (*Generator, error) {
	g := &Generator{}
	if err := g.rekey(blake3.Sum256(seed)); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generator) rekey(key [keySize]byte) error {
	h, err := blake3.NewKeyed(key[:])
	if err != nil {
		return err
	}
	g.xof = h.Digest()
	return nil
}

// Generate returns a base64url string whose decoded length covers at least
// bits bits of stream output.
func (g *Generator) Generate(bits int) (string, error) {
	raw, err := g.read(bits)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// GenerateInto appends the same encoding Generate produces to b, avoiding
// the intermediate string allocation on hot issuance paths.
func (g *Generator) GenerateInto(bits int, b *strings.Builder) error {
	raw, err := g.read(bits)
	if err != nil {
		return err
	}

	encoded := make([]byte, base64.RawURLEncoding.EncodedLen(len(raw)))
	base64.RawURLEncoding.Encode(encoded, raw)
	b.Write(encoded)
	return nil
}

func (g *Generator) read(bits int) ([]byte, error) {
	if bits <= 0 {
		return nil, errors.New("bit count must be positive")
	}

	raw := make([]byte, (bits+7)/8)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := io.ReadFull(g.xof, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Reset replaces the stream with one derived from seed, making subsequent
// output reproducible. It exists for testing and must not be wired into
// request handling.
func (g *Generator) Reset(seed []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rekey(blake3.Sum256(seed))
}
