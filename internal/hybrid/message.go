package hybrid

import (
	"errors"
	"fmt"
)

// ErrMalformedMessage is returned for residue messages of the wrong shape.
var ErrMalformedMessage = errors.New("hybrid: malformed residue message")

// EncodeResidue builds the wire form of a result: the residues followed by
// the prime.
func EncodeResidue(residue []uint64, prime uint64) []uint64 {
	msg := make([]uint64, len(residue)+1)
	copy(msg, residue)
	msg[len(residue)] = prime
	return msg
}

// DecodeResidue splits a message into prime and residue vector, checking its
// length against dimension and that every residue is reduced.
func DecodeResidue(msg []uint64, dimension int) (uint64, []uint64, error) {
	if len(msg) != dimension+1 {
		return 0, nil, fmt.Errorf("%w: %d values, want %d", ErrMalformedMessage, len(msg), dimension+1)
	}
	prime := msg[dimension]
	if prime < 2 {
		return 0, nil, fmt.Errorf("%w: prime %d", ErrMalformedMessage, prime)
	}
	residue := msg[:dimension]
	for i, r := range residue {
		if r >= prime {
			return 0, nil, fmt.Errorf("%w: residue[%d] = %d >= prime %d", ErrMalformedMessage, i, r, prime)
		}
	}
	return prime, residue, nil
}
