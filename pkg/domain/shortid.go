package domain

import (
	"crypto/rand"
	"math/big"
)

// ShortIDAlphabet is the character set of generated usernames and short ids.
const ShortIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

// ShortIDLength is the length of generated tokens.
const ShortIDLength = 16

// NewShortID returns a random 16-character token from ShortIDAlphabet.
func NewShortID() string {
	max := big.NewInt(int64(len(ShortIDAlphabet)))
	b := make([]byte, ShortIDLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		b[i] = ShortIDAlphabet[n.Int64()]
	}
	return string(b)
}
