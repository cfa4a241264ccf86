package crypto_test

import (
	"bytes"
	"testing"

	"github.com/SegFaultAndEC/password-manager/internal/crypto"
)

func BenchmarkDeriveKey(b *testing.B) {
	provider := crypto.NewProvider()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		provider.DeriveKey("password123")
	}
}

func BenchmarkEncrypt(b *testing.B) {
	provider := crypto.NewProvider()
	plaintext := bytes.Repeat([]byte("x"), 64*1024)

	b.SetBytes(int64(len(plaintext)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := provider.Encrypt(plaintext, "password123"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecrypt(b *testing.B) {
	provider := crypto.NewProvider()
	plaintext := bytes.Repeat([]byte("x"), 64*1024)

	transport, err := provider.Encrypt(plaintext, "password123")
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(plaintext)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := provider.Decrypt(transport, "password123"); err != nil {
			b.Fatal(err)
		}
	}
}
