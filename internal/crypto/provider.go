package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// KeySize is the AES-256 key length.
	KeySize = 32

	// IVSize equals the AES block size.
	IVSize = aes.BlockSize

	// MinCiphertextSize is one IV plus one block.
	MinCiphertextSize = IVSize + aes.BlockSize
)

// Errors. Every decryption failure matches ErrDecryptionFailed.
var (
	ErrDecryptionFailed   = errors.New("decryption failed")
	ErrInvalidEncoding    = errors.New("transport string is not valid base64")
	ErrCiphertextTooShort = errors.New("ciphertext shorter than iv plus one block")
	ErrInvalidCiphertext  = errors.New("ciphertext is not a whole number of blocks")
	ErrInvalidPadding     = errors.New("invalid padding")
	ErrInvalidKey         = errors.New("invalid key size")
)

// CryptoProvider implements AES-256-CBC with PKCS#7 padding and a random
// IV prepended to the ciphertext. The key is a single SHA-256 pass over the
// passphrase and no authentication tag is written, which keeps files
// readable by earlier versions of the vault.
type CryptoProvider struct {
	random io.Reader
}

// NewProvider creates a crypto provider.
func NewProvider() Provider {
	return &CryptoProvider{
		random: rand.Reader,
	}
}

// NewProviderWithReader creates a provider drawing IVs from r.
func NewProviderWithReader(r io.Reader) Provider {
	return &CryptoProvider{
		random: r,
	}
}

// DeriveKey derives the encryption key from a passphrase.
func (p *CryptoProvider) DeriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

// HashPassphrase returns the hex SHA-256 of the passphrase. It equals the
// hex form of DeriveKey; documents store it only to verify re-entry.
func (p *CryptoProvider) HashPassphrase(passphrase string) string {
	return hex.EncodeToString(p.DeriveKey(passphrase))
}

// Encrypt encrypts plaintext and returns base64(iv || ciphertext).
func (p *CryptoProvider) Encrypt(plaintext []byte, passphrase string) (string, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(p.random, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	raw, err := encryptWithIV(plaintext, p.DeriveKey(passphrase), iv)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt decodes the transport string and decrypts it.
func (p *CryptoProvider) Decrypt(transport string, passphrase string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(transport))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrInvalidEncoding)
	}

	return DecryptData(raw, p.DeriveKey(passphrase))
}

// EncryptData encrypts plaintext under an already derived key with a fresh
// IV. Returns: iv || ciphertext
func EncryptData(plaintext, key []byte) ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}
	return encryptWithIV(plaintext, key, iv)
}

// DecryptData decrypts iv || ciphertext under an already derived key.
func DecryptData(data, key []byte) ([]byte, error) {
	if err := ValidateKeySize(key); err != nil {
		return nil, err
	}

	if len(data) < MinCiphertextSize {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrCiphertextTooShort)
	}

	iv := data[:IVSize]
	body := data[IVSize:]
	if len(body)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrInvalidCiphertext)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	plaintext := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, body)

	unpadded, err := Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return unpadded, nil
}

func encryptWithIV(plaintext, key, iv []byte) ([]byte, error) {
	if err := ValidateKeySize(key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	padded := Pad(plaintext, aes.BlockSize)

	result := make([]byte, IVSize+len(padded))
	copy(result[:IVSize], iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(result[IVSize:], padded)

	return result, nil
}

// ValidateKeySize checks if the key is the correct size.
func ValidateKeySize(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidKey, KeySize, len(key))
	}
	return nil
}
