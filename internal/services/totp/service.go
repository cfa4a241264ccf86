package totp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ErrEmptySecret is returned for a blank seed.
var ErrEmptySecret = errors.New("totp: secret cannot be empty")

// Service provides TOTP (Time-based One-Time Password) functionality for
// account secrets that hold a base32 seed or an otpauth:// URI.
type Service interface {
	// GenerateCode generates a TOTP code from a secret.
	GenerateCode(secret string) (string, error)

	// ValidateCode validates a TOTP code against a secret.
	ValidateCode(secret, code string) bool

	// GenerateCodeAtTime generates a TOTP code for a specific time.
	GenerateCodeAtTime(secret string, t time.Time) (string, error)

	// TimeWindow returns the current step and the time left in it.
	TimeWindow() (current int64, remaining time.Duration)

	// IsValidSecret checks whether secret can produce codes.
	IsValidSecret(secret string) error
}

// DefaultService implements TOTP operations.
type DefaultService struct {
	// Configuration
	period    uint          // Time step in seconds (default: 30)
	digits    otp.Digits    // Number of digits (default: 6)
	algorithm otp.Algorithm // Hash algorithm (default: SHA1)
	skew      uint          // Periods accepted either side when validating

	now func() time.Time
}

// NewService creates a new TOTP service with default settings.
func NewService() *DefaultService {
	return &DefaultService{
		period:    30,               // Standard 30-second window
		digits:    otp.DigitsSix,    // Standard 6-digit codes
		algorithm: otp.AlgorithmSHA1, // Standard algorithm for compatibility
		skew:      1,
		now:       time.Now,
	}
}

// NewServiceWithConfig creates a TOTP service with custom configuration.
// Unknown algorithm names fall back to SHA1.
func NewServiceWithConfig(period, digits uint, algorithm string) *DefaultService {
	s := NewService()
	if period > 0 {
		s.period = period
	}
	if digits > 0 {
		s.digits = otp.Digits(digits)
	}
	s.algorithm = parseAlgorithm(algorithm)
	return s
}

// GenerateCode generates a TOTP code for the current time.
func (s *DefaultService) GenerateCode(secret string) (string, error) {
	return s.GenerateCodeAtTime(secret, s.now())
}

// ValidateCode validates a TOTP code against a secret.
func (s *DefaultService) ValidateCode(secret, code string) bool {
	if code == "" {
		return false
	}

	seed, opts, err := s.resolve(secret)
	if err != nil {
		return false
	}

	// Accept a small clock skew around the current period
	valid, err := totp.ValidateCustom(code, seed, s.now().UTC(), totp.ValidateOpts{
		Period:    opts.Period,
		Skew:      s.skew,
		Digits:    opts.Digits,
		Algorithm: opts.Algorithm,
	})
	return err == nil && valid
}

// GenerateCodeAtTime generates a TOTP code for a specific time.
func (s *DefaultService) GenerateCodeAtTime(secret string, t time.Time) (string, error) {
	seed, opts, err := s.resolve(secret)
	if err != nil {
		return "", err
	}

	code, err := totp.GenerateCodeCustom(seed, t, opts)
	if err != nil {
		return "", fmt.Errorf("totp: failed to generate code: %w", err)
	}

	return code, nil
}

// TimeWindow returns the current TOTP time window information.
func (s *DefaultService) TimeWindow() (current int64, remaining time.Duration) {
	now := s.now()
	current = now.Unix() / int64(s.period)

	// Calculate time remaining in current window
	nextWindow := (current + 1) * int64(s.period)
	remaining = time.Unix(nextWindow, 0).Sub(now)

	return current, remaining
}

// IsValidSecret checks if a secret string is valid for TOTP.
func (s *DefaultService) IsValidSecret(secret string) error {
	if _, err := s.GenerateCodeAtTime(secret, s.now()); err != nil {
		return fmt.Errorf("totp: invalid secret format: %w", err)
	}
	return nil
}

// resolve turns a stored secret into a seed and generation options. An
// otpauth:// URI carries its own period, digits and algorithm.
func (s *DefaultService) resolve(secret string) (string, totp.ValidateOpts, error) {
	opts := totp.ValidateOpts{
		Period:    s.period,
		Digits:    s.digits,
		Algorithm: s.algorithm,
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", opts, ErrEmptySecret
	}

	if strings.HasPrefix(strings.ToLower(secret), "otpauth://") {
		key, err := otp.NewKeyFromURL(secret)
		if err != nil {
			return "", opts, fmt.Errorf("totp: parse uri: %w", err)
		}
		if key.Type() != "totp" {
			return "", opts, fmt.Errorf("totp: unsupported otp type %q", key.Type())
		}

		opts.Period = uint(key.Period())
		opts.Digits = key.Digits()
		opts.Algorithm = key.Algorithm()
		secret = key.Secret()
	}

	// Seeds are often shown grouped and lower-case
	seed := strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(secret))
	if seed == "" {
		return "", opts, ErrEmptySecret
	}

	return seed, opts, nil
}

func parseAlgorithm(name string) otp.Algorithm {
	switch strings.ToUpper(name) {
	case "SHA256":
		return otp.AlgorithmSHA256
	case "SHA512":
		return otp.AlgorithmSHA512
	case "MD5":
		return otp.AlgorithmMD5
	default:
		return otp.AlgorithmSHA1
	}
}
