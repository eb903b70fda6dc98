package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// CodeLength is the number of digits in a verification code
const CodeLength = 6

// codes expire within minutes, the default cost is enough
const bcryptCost = bcrypt.DefaultCost

// GenerateCode returns a random numeric verification code
func GenerateCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// HashCode hashes a verification code for storage
func HashCode(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckCode compares a submitted code against its stored hash
func CheckCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
