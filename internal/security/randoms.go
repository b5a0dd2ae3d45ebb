package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*-_=+?"

	fullAlphabet = upperChars + lowerChars + digitChars + symbolChars

	// MinPasswordLength is the shortest password RandomPassword will generate.
	MinPasswordLength = 8
)

// RandomCode returns a numeric one-time code of n digits using crypto/rand.
func RandomCode(n int) (string, error) {
	if n < 4 || n > 10 {
		return "", errors.New("code length must be between 4 and 10 digits")
	}
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + v.Int64()))
	}
	return b.String(), nil
}

// RandomPassword returns a random password of length n containing at least one
// uppercase letter, one digit, and one symbol. The guaranteed characters are
// shuffled into random positions. Returns an error when n < MinPasswordLength.
func RandomPassword(n int) (string, error) {
	if n < MinPasswordLength {
		return "", errors.New("password length below minimum")
	}
	out := make([]byte, 0, n)
	for _, set := range []string{upperChars, digitChars, symbolChars} {
		c, err := randomFrom(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < n {
		c, err := randomFrom(fullAlphabet)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func randomFrom(set string) (byte, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[v.Int64()], nil
}

// shuffle is a Fisher-Yates shuffle driven by crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := v.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
