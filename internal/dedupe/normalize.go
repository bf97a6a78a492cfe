package dedupe

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalizer derives canonical keys from product names. It keeps a caser
// between calls and must not be shared between goroutines.
type Normalizer struct {
	fold cases.Caser
}

func NewNormalizer() *Normalizer {
	return &Normalizer{fold: cases.Fold()}
}

// Key trims the name, applies NFKC, case-folds it and collapses every run of
// whitespace to a single space. Names that differ only in casing, spacing or
// Unicode compatibility form share a key.
func (n *Normalizer) Key(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = n.fold.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalKey is Key on a fresh Normalizer
func CanonicalKey(name string) string {
	return NewNormalizer().Key(name)
}
