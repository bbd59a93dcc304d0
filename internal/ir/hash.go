package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without colliding with old digests.
const (
	DomainDecl = "rtinit/decl/v1"
	DomainFile = "rtinit/file/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DeclID computes the content-addressed ID of a single declaration.
// Position is excluded, so moving a clause within a file does not change
// its ID; renaming, retyping, or changing its initializer does.
func DeclID(d Decl) (string, error) {
	canonical, err := MarshalCanonical(d.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("DeclID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDecl, canonical), nil
}

// FileDigest computes the content-addressed digest of a whole declaration
// file, covering every clause in order. The generation cache combines it
// with the emit options to form its lookup key: equal key means equal
// generated output.
func FileDigest(f *File) (string, error) {
	canonical, err := MarshalCanonical(f.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("FileDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainFile, canonical), nil
}
