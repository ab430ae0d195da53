package semantic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/brimdata/sqm/compiler/ast"
)

// ViolationType names the construct rejected by a strict compliance check.
type ViolationType int

const (
	ImplicitSelect ViolationType = iota
	LimitOffset
	SubqueryOrderBy
	UnmappedPolymorphism
	AliasedFetchJoin
	ReservedWordAsAlias
	FunctionCall
	CollectionFunction
)

var violationNames = [...]string{
	ImplicitSelect:       "implicit select",
	LimitOffset:          "limit/offset",
	SubqueryOrderBy:      "subquery order by",
	UnmappedPolymorphism: "unmapped polymorphism",
	AliasedFetchJoin:     "aliased fetch join",
	ReservedWordAsAlias:  "reserved word as alias",
	FunctionCall:         "function call",
	CollectionFunction:   "collection function",
}

func (v ViolationType) String() string {
	if v < 0 || int(v) >= len(violationNames) {
		return fmt.Sprintf("ViolationType(%d)", int(v))
	}
	return violationNames[v]
}

// Each error type embeds the location of the offending node so that a
// caller holding the query text can point at it.  Pos is -1 when there
// was no node.

// ParsingError reports a syntax tree shape the analyzer does not handle.
type ParsingError struct {
	Msg string
	ast.Loc
}

func (e *ParsingError) Error() string {
	return e.Msg
}

// SemanticError reports a well-formed query that cannot be resolved.
type SemanticError struct {
	Msg string
	// Text is the source text that failed to resolve, when there is one.
	Text string
	ast.Loc
}

func (e *SemanticError) Error() string {
	return e.Msg
}

// UnknownEntityError is a SemanticError for an entity name the model does
// not know.  errors.As finds the embedded SemanticError.
type UnknownEntityError struct {
	*SemanticError
	Name        string
	Suggestions []string
}

func (e *UnknownEntityError) Error() string {
	if len(e.Suggestions) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s (did you mean %s?)", e.Msg, strings.Join(e.Suggestions, " or "))
}

func (e *UnknownEntityError) Unwrap() error {
	return e.SemanticError
}

type StrictComplianceError struct {
	Type ViolationType
	Msg  string
	ast.Loc
}

func (e *StrictComplianceError) Error() string {
	return fmt.Sprintf("strict compliance violation (%s): %s", e.Type, e.Msg)
}

// LiteralNumberFormatError reports a numeric literal that could not be
// converted.
type LiteralNumberFormatError struct {
	Text string
	Err  error
	ast.Loc
}

func (e *LiteralNumberFormatError) Error() string {
	return fmt.Sprintf("could not interpret numeric literal %q", e.Text)
}

func (e *LiteralNumberFormatError) Unwrap() error {
	return e.Err
}

// AliasCollisionError reports an identification or result variable
// defined twice in one query.
type AliasCollisionError struct {
	Alias string
	ast.Loc
}

func (e *AliasCollisionError) Error() string {
	return fmt.Sprintf("alias %q is already defined", e.Alias)
}

type NotYetImplementedError struct {
	Msg string
	ast.Loc
}

func (e *NotYetImplementedError) Error() string {
	return "not yet implemented: " + e.Msg
}

func locOf(n ast.Node) ast.Loc {
	if n == nil {
		return ast.NewLoc(-1, -1)
	}
	return ast.NewLoc(n.Pos(), n.End())
}

func semanticErrorf(n ast.Node, format string, args ...any) *SemanticError {
	return &SemanticError{Msg: fmt.Sprintf(format, args...), Loc: locOf(n)}
}

func pathError(n ast.Node, text string) *SemanticError {
	return &SemanticError{
		Msg:  fmt.Sprintf("could not resolve path %q", text),
		Text: text,
		Loc:  locOf(n),
	}
}

const maxSuggestions = 3

// suggest returns the names within a small edit distance of name, closest
// first.
func suggest(name string, names []string) []string {
	type candidate struct {
		name string
		dist int
	}
	limit := max(2, len(name)/3)
	var candidates []candidate
	lower := strings.ToLower(name)
	for _, n := range names {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(n))
		if d <= limit {
			candidates = append(candidates, candidate{n, d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	var out []string
	for k := 0; k < len(candidates) && k < maxSuggestions; k++ {
		out = append(out, candidates[k].name)
	}
	return out
}
