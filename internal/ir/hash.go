package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainExpr   = "framecheck/expr/v1"
	DomainSpec   = "framecheck/spec/v1"
	DomainReport = "framecheck/report/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Key returns the structural identity of an expression. Two expressions
// have the same key iff they have the same shape and content, regardless
// of allocation or source position.
func Key(e Expr) (string, error) {
	canonical, err := MarshalCanonical(Encode(e))
	if err != nil {
		return "", fmt.Errorf("Key: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainExpr, canonical), nil
}

// SpecHash computes the content hash of a loaded specification.
func SpecHash(s *Spec) (string, error) {
	canonical, err := MarshalCanonical(EncodeSpec(s))
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// ReportHash computes the content hash of a rendered report.
func ReportHash(text string) string {
	return hashWithDomain(DomainReport, []byte(text))
}

// MustKey is like Key but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustKey(e Expr) string {
	k, err := Key(e)
	if err != nil {
		panic(err)
	}
	return k
}
