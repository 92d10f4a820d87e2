package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a cashier/admin password for storage. Cost stays
// at the library default; POS logins are cached, not hot-path.
func HashPassword(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
}

// ComparePassword checks a login attempt against the stored hash.
// Returns bcrypt.ErrMismatchedHashAndPassword on a wrong password.
func ComparePassword(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
