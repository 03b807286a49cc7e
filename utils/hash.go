package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost is above the library default; login latency stays acceptable and
// guardian accounts carry payment access.
const bcryptCost = 12

// HashPassword hashes a plaintext password for storage on the user row.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashed), err
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// Hashes created under a different cost keep verifying; the cost is encoded
// in the hash itself.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
