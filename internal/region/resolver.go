package region

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
)

// Match scores.
const (
	scoreSubstring = 1 // token of at least minSubstringRunes inside an alias
	scoreExact     = 2 // token equals an alias or the code
	scorePhrase    = 3 // whole multi-word alias found in the input
)

const minSubstringRunes = 3

// Region is a resolved scope.
type Region struct {
	Code string // model.NationalScope for the whole country
	Name string
}

// IsNational reports whether the region is the country-wide scope.
func (r Region) IsNational() bool { return r.Code == model.NationalScope }

type entry struct {
	code    string
	name    string
	aliases []string // folded
}

// Resolver maps free text to a canonical region code.
//
// Every region is scored over all input tokens and the unique best score wins.
// Equal best scores are rejected as ambiguous, listing candidates in code order,
// so the result never depends on token or map iteration order.
type Resolver struct {
	entries  []entry
	byCode   map[string]entry
	national []string
	nameNat  string
}

// NewResolver builds a resolver from a code → aliases table.
func NewResolver(table map[string][]string) *Resolver {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	r := &Resolver{byCode: make(map[string]entry, len(codes)), nameNat: "Italia"}
	for _, code := range codes {
		aliases := table[code]
		e := entry{code: strings.ToUpper(code), name: code}
		if len(aliases) > 0 {
			e.name = aliases[0]
		}
		for _, a := range aliases {
			e.aliases = append(e.aliases, fold(a))
		}
		r.entries = append(r.entries, e)
		r.byCode[e.code] = e
	}
	for _, a := range nationalAliases {
		r.national = append(r.national, fold(a))
	}
	return r
}

// NewDefaultResolver uses the built-in Italian region table.
func NewDefaultResolver() *Resolver {
	return NewResolver(italianRegions)
}

// National returns the country-wide scope.
func (r *Resolver) National() Region {
	return Region{Code: model.NationalScope, Name: r.nameNat}
}

// Codes returns every canonical code in fixed order.
func (r *Resolver) Codes() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.code
	}
	return out
}

// Lookup returns the region for a canonical code.
func (r *Resolver) Lookup(code string) (Region, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == model.NationalScope {
		return r.National(), true
	}
	e, ok := r.byCode[code]
	if !ok {
		return Region{}, false
	}
	return Region{Code: e.code, Name: e.name}, true
}

// Resolve finds the region named by input. Empty input or a national alias selects the whole country.
// It returns domain.ErrUnknownRegion when nothing matches and a *domain.AmbiguousRegionError on ties.
func (r *Resolver) Resolve(input string) (Region, error) {
	folded := fold(input)
	if folded == "" {
		return r.National(), nil
	}
	tokens := tokenize(folded)
	for _, tok := range tokens {
		for _, nat := range r.national {
			if tok == nat {
				return r.National(), nil
			}
		}
	}

	best := 0
	var winners []entry
	for _, e := range r.entries {
		s := e.score(folded, tokens)
		switch {
		case s == 0 || s < best:
		case s > best:
			best = s
			winners = []entry{e}
		default:
			winners = append(winners, e)
		}
	}

	switch len(winners) {
	case 0:
		return Region{}, fmt.Errorf("%w: %q", domain.ErrUnknownRegion, strings.TrimSpace(input))
	case 1:
		return Region{Code: winners[0].code, Name: winners[0].name}, nil
	default:
		cands := make([]string, len(winners))
		for i, w := range winners {
			cands[i] = w.code
		}
		return Region{}, &domain.AmbiguousRegionError{Input: strings.TrimSpace(input), Candidates: cands}
	}
}

func (e entry) score(folded string, tokens []string) int {
	total := 0
	for _, tok := range tokens {
		total += e.tokenScore(tok)
	}
	for _, a := range e.aliases {
		if strings.Contains(a, " ") && strings.Contains(folded, a) {
			total += scorePhrase
		}
	}
	return total
}

func (e entry) tokenScore(tok string) int {
	if tok == strings.ToLower(e.code) {
		return scoreExact
	}
	sub := false
	for _, a := range e.aliases {
		if tok == a {
			return scoreExact
		}
		if utf8.RuneCountInString(tok) >= minSubstringRunes && strings.Contains(a, tok) {
			sub = true
		}
	}
	if sub {
		return scoreSubstring
	}
	return 0
}
