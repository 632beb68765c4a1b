package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	keyFileName = "store.key"
	saltSize    = 16
	secretSize  = 32
)

// sealer encrypts values at rest with a machine-local key so a copied
// database file does not leak bearer tokens.
type sealer struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// newSealer loads or creates the key file next to the database.
func newSealer(dir string) (*sealer, error) {
	path := filepath.Join(dir, keyFileName)
	material, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		material = make([]byte, saltSize+secretSize)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("generate key material: %w", err)
		}
		if err := os.WriteFile(path, material, 0o600); err != nil {
			return nil, fmt.Errorf("write key file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	if len(material) != saltSize+secretSize {
		return nil, fmt.Errorf("key file %s has unexpected size %d", path, len(material))
	}

	salt, secret := material[:saltSize], material[saltSize:]
	key := argon2.IDKey(secret, salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("build aead: %w", err)
	}
	return &sealer{aead: aead}, nil
}

func (s *sealer) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *sealer) open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("store: ciphertext too short")
	}
	nonce, sealed := ciphertext[:chacha20poly1305.NonceSizeX], ciphertext[chacha20poly1305.NonceSizeX:]
	return s.aead.Open(nil, nonce, sealed, nil)
}
