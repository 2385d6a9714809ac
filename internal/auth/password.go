package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost matches the cost the directory has always hashed with.
const DefaultBcryptCost = 10

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// VerifyPassword reports whether plain matches hashed. Malformed hashes never match.
func VerifyPassword(hashed, plain string) bool {
	return ComparePassword(hashed, plain) == nil
}
