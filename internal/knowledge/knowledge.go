package knowledge

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

var ErrNoResponse = errors.New("knowledge entry has no response")

// Entry pairs case-insensitive keywords with a canned response.
type Entry struct {
	Keywords []string `json:"keywords"`
	Response string   `json:"response"`
}

// Base is an ordered, compiled knowledge base. Entry order decides ties.
type Base struct {
	entries []Entry
	matcher *goahocorasick.Machine
	// owners maps a normalized keyword to the indexes of the entries listing it.
	owners map[string][]int
}

func NewBase(entries []Entry) (*Base, error) {
	base := &Base{
		entries: make([]Entry, 0, len(entries)),
		owners:  map[string][]int{},
	}
	for index, entry := range entries {
		if strings.TrimSpace(entry.Response) == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrNoResponse, index)
		}
		// A keyword listed twice in one entry counts twice for that entry.
		keywords := lo.FilterMap(entry.Keywords, func(keyword string, _ int) (string, bool) {
			normalized := strings.ToLower(keyword)
			return normalized, normalized != ""
		})
		for _, keyword := range keywords {
			base.owners[keyword] = append(base.owners[keyword], index)
		}
		base.entries = append(base.entries, Entry{
			Keywords: append([]string(nil), entry.Keywords...),
			Response: entry.Response,
		})
	}
	if len(base.owners) == 0 {
		return base, nil
	}

	patterns := lo.Keys(base.owners)
	sort.Strings(patterns)
	runes := make([][]rune, len(patterns))
	for i, pattern := range patterns {
		runes[i] = []rune(pattern)
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(runes); err != nil {
		return nil, fmt.Errorf("build keyword automaton: %w", err)
	}
	base.matcher = machine
	return base, nil
}

// Match returns the response of the entry with the most listed keywords
// found in input. A keyword found more than once in input still counts once. Ties go to the earliest entry; zero matches is no match.
func (b *Base) Match(input string) (string, bool) {
	if b == nil || b.matcher == nil || input == "" {
		return "", false
	}
	normalized := []rune(strings.ToLower(input))
	if len(normalized) == 0 {
		return "", false
	}

	found := map[string]struct{}{}
	for _, term := range b.matcher.MultiPatternSearch(normalized, false) {
		found[string(term.Word)] = struct{}{}
	}
	if len(found) == 0 {
		return "", false
	}

	counts := make([]int, len(b.entries))
	for keyword := range found {
		for _, index := range b.owners[keyword] {
			counts[index]++
		}
	}
	best, bestCount := -1, 0
	for index, count := range counts {
		if count > bestCount {
			best, bestCount = index, count
		}
	}
	if best < 0 {
		return "", false
	}
	return b.entries[best].Response, true
}

// Entries returns a copy of the base in order.
func (b *Base) Entries() []Entry {
	if b == nil {
		return nil
	}
	out := make([]Entry, len(b.entries))
	for i, entry := range b.entries {
		out[i] = Entry{Keywords: append([]string(nil), entry.Keywords...), Response: entry.Response}
	}
	return out
}

func (b *Base) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
