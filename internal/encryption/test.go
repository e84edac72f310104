package encryption

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// testPrefix marks values sealed by TestSealer.
const testPrefix = "TTSEAL:"

// TestSealer is a deterministic sealer for tests. It base64-encodes the
// secret behind a fixed prefix so sealed output differs from plaintext
// while requiring no key material.
type TestSealer struct {
	setupCalled bool
}

var _ Sealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (s *TestSealer) Setup() error {
	s.setupCalled = true
	return nil
}

func (s *TestSealer) Seal(plaintext string) (string, error) {
	return testPrefix + base64.StdEncoding.EncodeToString([]byte(plaintext)), nil
}

func (s *TestSealer) Open(sealed string) (string, error) {
	if !s.IsSealed(sealed) {
		return "", ErrNotSealed
	}
	plain, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, testPrefix))
	if err != nil {
		return "", fmt.Errorf("decoding test seal: %w", err)
	}
	return string(plain), nil
}

func (s *TestSealer) IsSealed(v string) bool {
	return strings.HasPrefix(v, testPrefix)
}
