package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm change.
const (
	DomainQuery      = "traitkit/query/v1"
	DomainCatalog    = "traitkit/catalog/v1"
	DomainEvaluation = "traitkit/evaluation/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueryID computes the content-addressed id of a query. Equal descriptors
// render to equal keys, so equivalent queries share an id.
func QueryID(q Query) (string, error) {
	canonical, err := q.Canonical()
	if err != nil {
		return "", fmt.Errorf("QueryID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// MustQueryID is like QueryID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustQueryID(q Query) string {
	id, err := QueryID(q)
	if err != nil {
		panic(err)
	}
	return id
}

// EvaluationID identifies the answer to q on a target with the given
// pointer size. Size outcomes depend on the target, so durable memo entries
// are keyed by EvaluationID rather than QueryID.
func EvaluationID(q Query, pointerSize int64) (string, error) {
	qid, err := QueryID(q)
	if err != nil {
		return "", err
	}
	canonical, err := MarshalCanonical(map[string]any{
		"pointer_size": pointerSize,
		"query":        qid,
	})
	if err != nil {
		return "", fmt.Errorf("EvaluationID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvaluation, canonical), nil
}

// MustEvaluationID is like EvaluationID but panics on error.
func MustEvaluationID(q Query, pointerSize int64) string {
	id, err := EvaluationID(q, pointerSize)
	if err != nil {
		panic(err)
	}
	return id
}

// CatalogHash identifies a set of nominal types independent of declaration
// order. Evaluations are memoized per catalog hash, since oracle answers
// change with the catalog.
func CatalogHash(types []TypeInfo) (string, error) {
	sorted := slices.Clone(types)
	slices.SortFunc(sorted, func(a, b TypeInfo) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})
	if sorted == nil {
		sorted = []TypeInfo{}
	}
	data, err := json.Marshal(sorted)
	if err != nil {
		return "", fmt.Errorf("CatalogHash: failed to marshal: %w", err)
	}
	canonical, err := canonicalizeJSON(data)
	if err != nil {
		return "", fmt.Errorf("CatalogHash: %w", err)
	}
	return hashWithDomain(DomainCatalog, canonical), nil
}
