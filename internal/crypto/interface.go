package crypto

// Provider defines the interface for cryptographic operations.
type Provider interface {
	// DeriveKey derives the 256-bit encryption key from a passphrase.
	DeriveKey(passphrase string) []byte

	// HashPassphrase returns the hex digest stored in a vault document.
	HashPassphrase(passphrase string) string

	// Encrypt encrypts plaintext under passphrase into a transport string.
	Encrypt(plaintext []byte, passphrase string) (string, error)

	// Decrypt reverses Encrypt.
	Decrypt(transport string, passphrase string) ([]byte, error)
}
