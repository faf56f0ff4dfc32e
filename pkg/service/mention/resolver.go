package mention

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Resolver matches @-mentions in annotation text against a set of known
// responsibles. Matching is case-insensitive and prefers the longest known
// full name so "@Ana Silva" never resolves to a responsible named "Ana".
type Resolver struct {
	// names sorted by length descending so the first match wins
	candidates []candidate
}

type candidate struct {
	name string // lowercase full name
	id   types.ResponsibleID
}

// NewResolver builds a resolver over the given responsibles. Unknown
// mention tokens stay plain text, so the set only needs to cover the
// participants of the obligation at hand.
func NewResolver(responsibles []*model.Responsible) *Resolver {
	candidates := make([]candidate, 0, len(responsibles))
	for _, r := range responsibles {
		if r.FullName == "" {
			continue
		}
		candidates = append(candidates, candidate{
			name: strings.ToLower(r.FullName),
			id:   r.ID,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].name) > len(candidates[j].name)
	})
	return &Resolver{candidates: candidates}
}

// Resolve scans the text for @name tokens and returns the IDs of every
// mentioned responsible in order of first appearance, without duplicates.
// Unmatched @tokens are left alone; they are not an error.
func (r *Resolver) Resolve(text string) []types.ResponsibleID {
	var ids []types.ResponsibleID
	seen := make(map[types.ResponsibleID]struct{})

	lower := strings.ToLower(text)
	for i := 0; i < len(lower); i++ {
		if lower[i] != '@' {
			continue
		}
		rest := lower[i+1:]
		if id, length, ok := r.match(rest); ok {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
			i += length
		}
	}
	return ids
}

// match finds the longest candidate name prefixing rest, terminated at a
// word boundary.
func (r *Resolver) match(rest string) (types.ResponsibleID, int, bool) {
	for _, c := range r.candidates {
		if !strings.HasPrefix(rest, c.name) {
			continue
		}
		if !boundaryAt(rest, len(c.name)) {
			continue
		}
		return c.id, len(c.name), true
	}
	return "", 0, false
}

// boundaryAt reports whether position pos in s is a word boundary
func boundaryAt(s string, pos int) bool {
	if pos >= len(s) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(s[pos:])
	return !unicode.IsLetter(next) && !unicode.IsDigit(next)
}
