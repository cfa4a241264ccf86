package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// Alphabets drawn from by Generate.
const (
	Letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	Digits  = "0123456789"
	Symbols = "!@#$%^&*()_+-=[]{}|;:,.<>?/"
)

// DefaultLength is the length used when none is configured.
const DefaultLength = 14

// ErrInvalidLength is returned for a length below one.
var ErrInvalidLength = errors.New("password length must be greater than zero")

// Generator draws passwords uniformly from its alphabet.
type Generator struct {
	random io.Reader
}

// New creates a generator backed by crypto/rand.
func New() *Generator {
	return &Generator{random: rand.Reader}
}

// NewWithReader creates a generator reading entropy from r.
func NewWithReader(r io.Reader) *Generator {
	return &Generator{random: r}
}

// Generate returns a password of length characters from letters and
// digits, plus Symbols when symbols is set.
func (g *Generator) Generate(length int, symbols bool) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	alphabet := Alphabet(symbols)
	max := big.NewInt(int64(len(alphabet)))

	password := make([]byte, length)
	for i := range password {
		// rand.Int rejects out of range draws, so each pick is uniform
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		password[i] = alphabet[n.Int64()]
	}

	return string(password), nil
}

// Generate is shorthand for New().Generate.
func Generate(length int, symbols bool) (string, error) {
	return New().Generate(length, symbols)
}

// Alphabet returns the character set used for the given options.
func Alphabet(symbols bool) string {
	if symbols {
		return Letters + Digits + Symbols
	}
	return Letters + Digits
}
