package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 10

// Credentials hashes and verifies passwords. Plaintext passwords never leave
// this type.
type Credentials struct {
	cost      int
	dummyHash []byte
}

func NewCredentials(cost int) *Credentials {
	if cost == 0 {
		cost = BcryptCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	// Compared against when the account does not exist, so an unknown
	// username costs the same as a wrong password.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("jobboard-dummy-password"), cost)
	return &Credentials{cost: cost, dummyHash: dummy}
}

// Hash hashes a password using bcrypt
func (c *Credentials) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify verifies a password against a hash
func (c *Credentials) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (c *Credentials) burn(password string) {
	_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
}
