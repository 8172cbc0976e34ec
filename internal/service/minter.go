package service

import (
	"crypto/rand"
	"math/big"
)

// ClickIDMinter produces click identifiers.
type ClickIDMinter interface {
	Mint() (string, error)
}

const base62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// clickIDLength gives well over 128 bits of entropy (62^32), so the
// identifier can serve as a bearer token correlating a click to a later
// conversion without being enumerable.
const clickIDLength = 32

type randomMinter struct{}

// NewClickIDMinter returns a minter backed by crypto/rand.
func NewClickIDMinter() ClickIDMinter {
	return randomMinter{}
}

func (randomMinter) Mint() (string, error) {
	out := make([]byte, clickIDLength)
	max := big.NewInt(int64(len(base62)))
	for i := range out {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = base62[num.Int64()]
	}
	return string(out), nil
}
