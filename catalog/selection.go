package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrEmptySelection is returned when parsing produces no components.
var ErrEmptySelection = errors.New("empty component selection")

// UnknownComponentError reports a token that resolved to no catalog entry.
type UnknownComponentError struct {
	Token string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component %q (known: %s)", e.Token, strings.Join(IDs(), ", "))
}

// Selection is an ordered, deduplicated set of canonical component ids.
type Selection struct {
	IDs []string
	// All is set when the selection came from the "all" token. Export then
	// operates on the components actually present in the container, not on
	// the literal id list.
	All bool
}

// Components returns the catalog entries for the selection, in selection order.
func (s Selection) Components() []Component {
	out := make([]Component, 0, len(s.IDs))
	for _, id := range s.IDs {
		if c, ok := Get(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether the canonical id is part of the selection.
func (s Selection) Contains(id string) bool {
	for _, got := range s.IDs {
		if got == id {
			return true
		}
	}
	return false
}

// HasLSPCapable reports whether any selected component consumes language servers.
func (s Selection) HasLSPCapable() bool {
	for _, c := range s.Components() {
		if c.CLI && c.LSP {
			return true
		}
	}
	return false
}

func (s Selection) String() string {
	if s.All {
		return "all"
	}
	return strings.Join(s.IDs, ",")
}

// Resolve maps a single raw token to a canonical component id. Resolution
// order: lowercase, alias lookup, canonical id lookup, reject.
func Resolve(token string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if id, ok := byAlias[t]; ok {
		return id, nil
	}
	if _, ok := byID[t]; ok {
		return t, nil
	}
	return "", &UnknownComponentError{Token: strings.TrimSpace(token)}
}

// ParseSelection parses a comma-separated component selection. Tokens are
// case-insensitive and may carry surrounding whitespace. The single token
// "all" expands to the whole catalog. Unknown tokens are collected so the
// caller can report every bad token at once rather than just the first.
func ParseSelection(raw string) (Selection, error) {
	tokens := splitTokens(raw)
	if len(tokens) == 0 {
		return Selection{}, ErrEmptySelection
	}

	if len(tokens) == 1 && strings.EqualFold(tokens[0], "all") {
		return Selection{IDs: IDs(), All: true}, nil
	}

	var errs *multierror.Error
	seen := map[string]bool{}
	var ids []string
	for _, tok := range tokens {
		id, err := Resolve(tok)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return Selection{}, err
	}
	if len(ids) == 0 {
		return Selection{}, ErrEmptySelection
	}
	return Selection{IDs: ids}, nil
}

// LanguageServerPrefix marks an argument as a language server selection.
const LanguageServerPrefix = "lsp:"

// HasLanguageServerPrefix reports whether the argument carries the LSP: prefix.
func HasLanguageServerPrefix(arg string) bool {
	return len(arg) >= len(LanguageServerPrefix) &&
		strings.EqualFold(arg[:len(LanguageServerPrefix)], LanguageServerPrefix)
}

// ParseLanguageServers parses an "LSP:a,b,c" argument into a language server
// selection. Unknown ids are returned separately; they are a warning for the
// caller, not an error, since the image build is the final authority on what
// it can install.
func ParseLanguageServers(raw string) (ids []string, unknown []string) {
	if HasLanguageServerPrefix(raw) {
		raw = raw[len(LanguageServerPrefix):]
	}
	seen := map[string]bool{}
	for _, tok := range splitTokens(raw) {
		t := strings.ToLower(tok)
		if seen[t] {
			continue
		}
		seen[t] = true
		if KnownLanguageServer(t) {
			ids = append(ids, t)
		} else {
			unknown = append(unknown, t)
		}
	}
	return ids, unknown
}

func splitTokens(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
