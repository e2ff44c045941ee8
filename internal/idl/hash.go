package idl

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for document identity.
// Version suffix enables future algorithm migration.
const DomainDocument = "idlsdk/document/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentHash computes the content-addressed identity of a document.
// Two documents that differ only in key order or number spelling hash equal.
func DocumentHash(v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("DocumentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// MustDocumentHash is like DocumentHash but panics on error.
// Use only in tests or when the document is known to be valid.
func MustDocumentHash(v Value) string {
	h, err := DocumentHash(v)
	if err != nil {
		panic(err)
	}
	return h
}
