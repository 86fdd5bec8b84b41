// Package sessionid generates sortable session identifiers: a UUIDv7
// rendered as 26 lowercase Crockford base32 characters.
package sessionid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/quartz"
)

// Length is the number of characters in an identifier.
const Length = 26

// Crockford's base32 alphabet, lowercase.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource lets tests supply deterministic randomness.
type RandSource interface {
	Intn(n int) int
}

// Generator produces identifiers. The zero value is not usable; call
// NewGenerator.
type Generator struct {
	clock quartz.Clock
	rand  RandSource
	mu    sync.Mutex
}

// NewGenerator creates a generator. A nil RandSource uses crypto/rand.
func NewGenerator(clock quartz.Clock, randSource RandSource) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{clock: clock, rand: randSource}
}

// Generate returns a new identifier.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var id [16]byte
	ms := uint64(g.clock.Now().UnixMilli())
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}
	if g.rand != nil {
		for i := 6; i < 16; i++ {
			id[i] = byte(g.rand.Intn(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("sessionid: reading random bytes: " + err.Error())
	}
	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return encode(id)
}

// encode writes the 128 bits as 26 five-bit groups, most significant
// first, with two zero pad bits at the front.
func encode(id [16]byte) string {
	var out [Length]byte
	var acc uint32
	bits := 2 // leading pad so 130 bits divide evenly
	pos := 0
	for _, b := range id {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = alphabet[(acc>>bits)&0x1f]
			pos++
		}
	}
	return string(out[:])
}

// Validate checks that id is a well-formed identifier.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("session id must be %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("session id first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
