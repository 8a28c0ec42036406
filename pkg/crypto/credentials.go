// Package crypto encrypts data source connection details at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned when the encryption key is empty.
	ErrInvalidKey = errors.New("invalid encryption key: must not be empty")
	// ErrDecryptionFailed is returned when decryption fails due to invalid ciphertext or wrong key.
	ErrDecryptionFailed = errors.New("decryption failed: invalid ciphertext or wrong key")
)

// ConnectionEncryptor provides AES-256-GCM authenticated encryption for data
// source connection maps. The stored form is base64(nonce || ciphertext || tag).
type ConnectionEncryptor struct {
	gcm cipher.AEAD
}

// NewConnectionEncryptor creates an encryptor from a key string. A
// base64-encoded 32-byte key (openssl rand -base64 32) is used directly; any
// other input is treated as a passphrase and hashed with SHA-256.
func NewConnectionEncryptor(keyInput string) (*ConnectionEncryptor, error) {
	if keyInput == "" {
		return nil, ErrInvalidKey
	}

	var key []byte
	decoded, err := base64.StdEncoding.DecodeString(keyInput)
	if err == nil && len(decoded) == 32 {
		key = decoded
	} else {
		hash := sha256.Sum256([]byte(keyInput))
		key = hash[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &ConnectionEncryptor{gcm: gcm}, nil
}

// Encrypt encrypts plaintext and returns base64(nonce || ciphertext || tag).
// Empty strings pass through unencrypted.
func (e *ConnectionEncryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends ciphertext and tag to the nonce.
	ciphertext := e.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Empty strings pass through.
func (e *ConnectionEncryptor) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode failed", ErrDecryptionFailed)
	}

	nonceSize := e.gcm.NonceSize()
	if len(data) < nonceSize+e.gcm.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrDecryptionFailed)
	}
	return string(plaintext), nil
}

// EncryptConnection serializes a connection map to JSON and encrypts it.
func (e *ConnectionEncryptor) EncryptConnection(connection map[string]any) (string, error) {
	if connection == nil {
		return "", nil
	}
	raw, err := json.Marshal(connection)
	if err != nil {
		return "", fmt.Errorf("failed to serialize connection: %w", err)
	}
	return e.Encrypt(string(raw))
}

// DecryptConnection decrypts and deserializes a connection map.
func (e *ConnectionEncryptor) DecryptConnection(encrypted string) (map[string]any, error) {
	if encrypted == "" {
		return nil, nil
	}
	plaintext, err := e.Decrypt(encrypted)
	if err != nil {
		return nil, err
	}
	var connection map[string]any
	if err := json.Unmarshal([]byte(plaintext), &connection); err != nil {
		return nil, fmt.Errorf("%w: invalid connection payload", ErrDecryptionFailed)
	}
	return connection, nil
}
