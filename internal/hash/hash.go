package hash

import "golang.org/x/crypto/bcrypt"

// HashPassword encodes the plain password with bcrypt at the default
// cost. Salt and cost are embedded in the returned string.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the encoded hash.
// bcrypt's comparison is constant-time.
func CheckPassword(encoded, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
