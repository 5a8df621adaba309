package test

import (
	"math/rand/v2"
	"strings"
)

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomKey returns a lowercase alphanumeric key of exactly n characters,
// suitable for idempotency keys and tenant ids.
func RandomKey(n int) string {
	if n <= 0 {
		n = 1
	}
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(keyAlphabet[rand.IntN(len(keyAlphabet))])
	}
	return b.String()
}

// RandomTenant returns a tenant id unlikely to collide with fixtures.
func RandomTenant() string {
	return "t-" + RandomKey(8)
}
