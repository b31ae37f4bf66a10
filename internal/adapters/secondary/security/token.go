package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DefaultTokenBytes : 16 octets = 128 bits d'aléa.
const DefaultTokenBytes = 16

// RandomTokenIssuer génère des secrets opaques hexadécimaux via crypto/rand.
type RandomTokenIssuer struct {
	size int
}

func NewRandomTokenIssuer(size int) *RandomTokenIssuer {
	if size < DefaultTokenBytes {
		size = DefaultTokenBytes
	}
	return &RandomTokenIssuer{size: size}
}

func (g *RandomTokenIssuer) Issue() (string, error) {
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
