package security

import "golang.org/x/crypto/bcrypt"

// HashPassword is called explicitly by the service layer before persisting a
// user. Models carry no hashing behavior.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(h), err
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
