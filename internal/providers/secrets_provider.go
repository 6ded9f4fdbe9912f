package providers

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"lifewrapped/internal/structures"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// SecretsProviderInterface stores provider API keys (BYOK) encrypted at rest.
// Keys are read-mostly: loaded when an engine probes availability, written
// only when the user updates credentials.
type SecretsProviderInterface interface {
	Set(name, value string) error
	Get(name string) (string, error)
	Delete(name string) error
}

const (
	keySize    = 32
	saltSize   = 32
	nonceSize  = 12
	iterations = 100000
)

// SecretsProvider encrypts each secret with AES-256-GCM under a key derived
// from a locally generated master secret (PBKDF2-SHA256). Never logs values.
type SecretsProvider struct {
	mu  sync.RWMutex
	dir string
	key []byte
}

func NewSecretsProvider(conf *structures.Config) (SecretsProviderInterface, error) {
	dir := filepath.Join(conf.Storage.Dir, "secrets")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("unable to create secrets directory: %w", err)
	}

	key, err := loadOrCreateKey(dir)
	if err != nil {
		return nil, err
	}

	return &SecretsProvider{dir: dir, key: key}, nil
}

func loadOrCreateKey(dir string) ([]byte, error) {
	keyFile := filepath.Join(dir, ".master")
	saltFile := filepath.Join(dir, ".salt")

	keyData, keyErr := os.ReadFile(keyFile)
	saltData, saltErr := os.ReadFile(saltFile)

	if keyErr != nil || saltErr != nil {
		var err error
		keyData, err = randomBytes(keySize)
		if err != nil {
			return nil, err
		}
		saltData, err = randomBytes(saltSize)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(keyFile, keyData, 0600); err != nil {
			return nil, fmt.Errorf("unable to write master key: %w", err)
		}
		if err := os.WriteFile(saltFile, saltData, 0600); err != nil {
			return nil, fmt.Errorf("unable to write salt: %w", err)
		}
	}

	return pbkdf2.Key(keyData, saltData, iterations, keySize, sha256.New), nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("unable to generate random bytes: %w", err)
	}
	return b, nil
}

func (s *SecretsProvider) secretPath(name string) string {
	return filepath.Join(s.dir, name+".enc")
}

func (s *SecretsProvider) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encrypted, err := encrypt([]byte(value), s.key)
	if err != nil {
		return err
	}
	return os.WriteFile(s.secretPath(name), []byte(encrypted), 0600)
}

func (s *SecretsProvider) Get(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.secretPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	plain, err := decrypt(string(data), s.key)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (s *SecretsProvider) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.secretPath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func encrypt(plaintext, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("unable to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("unable to create GCM: %w", err)
	}

	nonce, err := randomBytes(nonceSize)
	if err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decrypt(encrypted string, key []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("unable to decode ciphertext: %w", err)
	}
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("unable to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("unable to create GCM: %w", err)
	}

	nonce := ciphertext[:nonceSize]
	plaintext, err := gcm.Open(nil, nonce, ciphertext[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}
