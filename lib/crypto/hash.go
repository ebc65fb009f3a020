package crypto

import (
	"bytes"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"
)

const (
	HashSize = blake2b.Size256
)

var (
	// MinHash is the all-zero digest, used to seed the lower bound of the key space
	MinHash = bytes.Repeat([]byte{0x00}, HashSize)
	// MaxHash is the all-0xFF digest, used to seed the upper bound of the key space
	MaxHash = bytes.Repeat([]byte{0xFF}, HashSize)
)

/*
	Hash is a function that takes an input message and returns a fixed-size string of bytes that is unique to the input
    to produce a short, fixed-length representation of the data, which can be used for various applications like data
    integrity checks. The forestry module uses blake2b-256 exclusively so that proofs stay bit-exact with the
    on-chain verifier.
*/

// Hasher() returns the global hashing algorithm used
func Hasher() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// only possible if a non-nil key longer than 64 bytes is supplied, which never happens here
		panic(err)
	}
	return h
}

// Hash() executes the global hashing algorithm on input bytes
func Hash(msg []byte) []byte {
	h := blake2b.Sum256(msg)
	return h[:]
}

// ShortHash() executes the global hashing algorithm on input bytes
// and truncates the output to 20 bytes
func ShortHash(msg []byte) []byte {
	h := blake2b.Sum256(msg)
	return h[:20]
}

// ShortHashString() returns the hex byte version of a short hash
func ShortHashString(msg []byte) string { return hex.EncodeToString(ShortHash(msg)) }

// HashString() returns the hex byte version of a hash
func HashString(msg []byte) string { return hex.EncodeToString(Hash(msg)) }
