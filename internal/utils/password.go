package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost balances hash strength against login latency under load.
const bcryptCost = 12

// HashPassword hashes a credential for storage.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with its stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
