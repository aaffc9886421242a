package auth

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLength = 10

	lowercaseLetters = "abcdefghijklmnopqrstuvwxyz"
	uppercaseLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	specialChars     = "!@#$%^&*?"
	digits           = "0123456789"
)

// GeneratePassword returns a random password containing at least one
// lowercase letter, one uppercase letter, one special character and one
// digit. Used for accounts created without a caller-chosen password.
func GeneratePassword() (string, error) {
	classes := []string{lowercaseLetters, uppercaseLetters, specialChars, digits}

	password := make([]byte, 0, passwordLength)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	all := lowercaseLetters + uppercaseLetters + specialChars + digits
	for len(password) < passwordLength {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	// shuffle so the class-guaranteed characters are not positional
	for i := len(password) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := n.Int64()
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func randomChar(from string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(from))))
	if err != nil {
		return 0, err
	}
	return from[n.Int64()], nil
}
