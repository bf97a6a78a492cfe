// Package dedupe decides which product records reach the output.
package dedupe

import (
	"strings"

	"github.com/nconklindev/pricesheet/internal/types"
)

type Verdict int

const (
	Admitted Verdict = iota
	Blank
	Invalid
	Duplicate
)

func (v Verdict) String() string {
	switch v {
	case Admitted:
		return "admitted"
	case Blank:
		return "blank"
	case Invalid:
		return "invalid"
	case Duplicate:
		return "duplicate"
	}
	return "unknown"
}

// Counts tallies verdicts. Total always equals the sum of the others.
type Counts struct {
	Total     int
	Blank     int
	Invalid   int
	Duplicate int
	Admitted  int
}

// Filter holds the seen-set of one conversion run. The first record with a
// given canonical key is admitted; later ones are dropped.
type Filter struct {
	policy types.PartialPolicy
	dedupe bool

	norm   *Normalizer
	seen   map[string]struct{}
	counts Counts
}

type Option func(*Filter)

// WithPolicy sets how rows with an empty name but a price are classified
func WithPolicy(p types.PartialPolicy) Option {
	return func(f *Filter) { f.policy = p }
}

// WithDedupe turns duplicate suppression on or off
func WithDedupe(enabled bool) Option {
	return func(f *Filter) { f.dedupe = enabled }
}

func New(opts ...Option) *Filter {
	f := &Filter{
		policy: types.PartialAsInvalid,
		dedupe: true,
		norm:   NewNormalizer(),
		seen:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Check classifies rec and, when it is admitted, remembers its key.
func (f *Filter) Check(rec types.Record) Verdict {
	v := f.classify(rec)
	f.counts.Total++
	switch v {
	case Blank:
		f.counts.Blank++
	case Invalid:
		f.counts.Invalid++
	case Duplicate:
		f.counts.Duplicate++
	case Admitted:
		f.counts.Admitted++
	}
	return v
}

func (f *Filter) classify(rec types.Record) Verdict {
	name := strings.TrimSpace(rec.Name)
	price := strings.TrimSpace(rec.Price)

	if name == "" && price == "" {
		return Blank
	}
	if name == "" {
		if f.policy == types.PartialAsBlank {
			return Blank
		}
		return Invalid
	}

	if !f.dedupe {
		return Admitted
	}
	key := f.norm.Key(name)
	if _, ok := f.seen[key]; ok {
		return Duplicate
	}
	f.seen[key] = struct{}{}
	return Admitted
}

func (f *Filter) Counts() Counts {
	return f.counts
}

// Seen reports how many distinct keys have been admitted
func (f *Filter) Seen() int {
	return len(f.seen)
}

// Reset empties the seen-set and the counters
func (f *Filter) Reset() {
	f.seen = make(map[string]struct{})
	f.counts = Counts{}
}
