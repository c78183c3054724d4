// Package auth hashes and verifies account passwords.
//
// New hashes are bcrypt. Records imported from the legacy data format carry a
// 32-bit rolling hash instead; Verify accepts both and NeedsRehash tells the
// caller to upgrade a legacy hash after a successful login.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt work factor used outside tests
	DefaultCost = 12

	// MaxPasswordBytes is the bcrypt input limit
	MaxPasswordBytes = 72
)

var (
	ErrMismatch        = errors.New("auth: invalid password")
	ErrPasswordTooLong = fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
)

// PasswordService provides bcrypt hashing and verification. The cost is a
// field so tests can run at bcrypt.MinCost.
type PasswordService struct {
	cost int
}

func NewPasswordService() *PasswordService {
	return &PasswordService{cost: DefaultCost}
}

// NewPasswordServiceWithCost is for tests in other packages
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns a self-contained bcrypt hash ($2a$<cost>$<salt><hash>)
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash, ErrMismatch when it does not
func (p *PasswordService) Verify(hash, plaintext string) error {
	if !IsBcrypt(hash) {
		if LegacyHash(plaintext) != hash {
			return ErrMismatch
		}
		return nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// NeedsRehash reports whether hash should be replaced with a fresh bcrypt hash
func (p *PasswordService) NeedsRehash(hash string) bool {
	if !IsBcrypt(hash) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < p.cost
}

func IsBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2")
}

// LegacyHash is the 32-bit rolling hash (h = h*31 + unit over UTF-16 code
// units) of the legacy format, rendered as signed hexadecimal. It is not a
// secure hash and is only used to verify old records.
func LegacyHash(password string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(password)) {
		h = h<<5 - h + int32(unit)
	}
	return strconv.FormatInt(int64(h), 16)
}
