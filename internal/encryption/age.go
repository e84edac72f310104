package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filippo.io/age"
	"filippo.io/age/armor"

	"tabtime/internal/config"
)

// AgeSealer seals secrets to an X25519 identity kept in a local file.
// The host runs unattended, so the identity is stored unencrypted with
// owner-only permissions. Sealed values are ASCII-armored.
type AgeSealer struct {
	identityPath string

	mu       sync.Mutex
	identity *age.X25519Identity
}

var _ Sealer = (*AgeSealer)(nil)

// NewAgeSealer creates a new AgeSealer from configuration.
func NewAgeSealer(cfg config.EncryptionConfig) *AgeSealer {
	return &AgeSealer{identityPath: cfg.IdentityPath}
}

// Setup generates the identity file if it does not exist yet.
func (s *AgeSealer) Setup() error {
	if _, err := os.Stat(s.identityPath); err == nil {
		return nil
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.identityPath), 0700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	content := fmt.Sprintf("# public key: %s\n%s\n", identity.Recipient(), identity)
	if err := os.WriteFile(s.identityPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing identity: %w", err)
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
	return nil
}

// Seal encrypts plaintext to the identity's recipient.
func (s *AgeSealer) Seal(plaintext string) (string, error) {
	identity, err := s.loadIdentity()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	aw := armor.NewWriter(&buf)
	w, err := age.Encrypt(aw, identity.Recipient())
	if err != nil {
		return "", fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, plaintext); err != nil {
		return "", fmt.Errorf("encrypting secret: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := aw.Close(); err != nil {
		return "", fmt.Errorf("finalizing armor: %w", err)
	}
	return buf.String(), nil
}

// Open decrypts an armored value produced by Seal.
func (s *AgeSealer) Open(sealed string) (string, error) {
	if !s.IsSealed(sealed) {
		return "", ErrNotSealed
	}
	identity, err := s.loadIdentity()
	if err != nil {
		return "", err
	}

	r, err := age.Decrypt(armor.NewReader(strings.NewReader(sealed)), identity)
	if err != nil {
		return "", fmt.Errorf("decrypting secret: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading decrypted secret: %w", err)
	}
	return string(plain), nil
}

// IsSealed reports whether s carries the age armor header.
func (s *AgeSealer) IsSealed(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), armor.Header)
}

// IsConfigured returns true if the identity file exists.
func (s *AgeSealer) IsConfigured() bool {
	_, err := os.Stat(s.identityPath)
	return err == nil
}

func (s *AgeSealer) loadIdentity() (*age.X25519Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity != nil {
		return s.identity, nil
	}

	data, err := os.ReadFile(s.identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}
	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing identity file: %w", err)
	}
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			s.identity = x
			return x, nil
		}
	}
	return nil, errors.New("no X25519 identity found in identity file")
}
