package encryption

import "errors"

// ErrNotSealed is returned by Open for a value the sealer did not produce.
var ErrNotSealed = errors.New("value is not sealed")

// Sealer protects a secret at rest. Sealed values are printable strings so
// they can be stored inside JSON documents.
type Sealer interface {
	// Setup prepares key material. It is a no-op when keys already exist.
	Setup() error

	// Seal encrypts plaintext.
	Seal(plaintext string) (string, error)

	// Open decrypts a value produced by Seal.
	Open(sealed string) (string, error)

	// IsSealed reports whether s looks like a value produced by Seal.
	IsSealed(s string) bool
}

// NoneSealer stores secrets as plaintext.
type NoneSealer struct{}

var _ Sealer = NoneSealer{}

func (NoneSealer) Setup() error { return nil }
func (NoneSealer) Seal(p string) (string, error) { return p, nil }
func (NoneSealer) Open(s string) (string, error) { return s, nil }
func (NoneSealer) IsSealed(string) bool { return false }
