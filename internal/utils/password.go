package utils

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 12

// HashPassword salts and hashes a plaintext password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash verifies a plaintext candidate against a stored hash.
// Returns false on any mismatch, including a malformed hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
