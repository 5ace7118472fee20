package delivery

import (
	"math/rand"
	"strconv"
)

type randomCodeGenerator struct{}

// NewCodeGenerator - creates the default verification code generator.
// Codes are uniform over [100000, 999999]: an anti-fumbling secret the
// borrower relays to the agent, not an auth credential. Brute force is
// blunted by the per-delivery attempt limiter on verify.
func NewCodeGenerator() CodeGenerator {
	return randomCodeGenerator{}
}

// Generate returns a fresh 6-digit numeric code.
func (randomCodeGenerator) Generate() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}
