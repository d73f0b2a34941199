package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes an account password.  The cost comes
// from BCRYPT_COST in the configuration so deployments can tune the
// work factor without a rebuild; tests use the bcrypt minimum.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.  The
// comparison is constant-time inside bcrypt; a false return covers
// both a wrong password and a malformed hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
