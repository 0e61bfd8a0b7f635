package service

import "golang.org/x/crypto/bcrypt"

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

func hashSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), hashCost)
	return string(b), err
}

func checkSecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
