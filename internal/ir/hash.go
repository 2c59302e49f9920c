package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainGraph = "loom/graph/v1"
	DomainBOM   = "loom/bom/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// GraphHash computes the content hash of a graph description. Two builds
// of the same harness hash equal.
func GraphHash(g *Graph) (string, error) {
	canonical, err := MarshalCanonical(g.canonical())
	if err != nil {
		return "", fmt.Errorf("GraphHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGraph, canonical), nil
}

// BOMHash computes the content hash of a list of BOM items. Order matters.
func BOMHash(items []BOMItem) (string, error) {
	canonical, err := MarshalCanonical(bomCanonical(items))
	if err != nil {
		return "", fmt.Errorf("BOMHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBOM, canonical), nil
}
