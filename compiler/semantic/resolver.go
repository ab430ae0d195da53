package semantic

import (
	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
)

type resolverKind int

const (
	selectResolver resolverKind = iota
	whereResolver
	orderByResolver
	joinTargetResolver
	joinPredicateResolver
)

// A resolver decides how paths are interpreted in one part of a query.
// Exactly one is active at any point of the walk.
type resolver struct {
	kind resolverKind
	// space is the space of the join being resolved by a join target or
	// join predicate resolver.
	space    *sqm.FromElementSpace
	joinType sqm.JoinType
	fetch    bool
}

var (
	selectPaths  = &resolver{kind: selectResolver}
	wherePaths   = &resolver{kind: whereResolver}
	orderByPaths = &resolver{kind: orderByResolver}
)

func joinTargetPaths(space *sqm.FromElementSpace, joinType sqm.JoinType, fetch bool) *resolver {
	return &resolver{
		kind:     joinTargetResolver,
		space:    space,
		joinType: joinType,
		fetch:    fetch,
	}
}

func joinPredicatePaths(space *sqm.FromElementSpace) *resolver {
	return &resolver{kind: joinPredicateResolver, space: space}
}

// checkFrom validates a reference to from-element f made through an alias
// of query block q.
func (r *resolver) checkFrom(n ast.Node, f *sqm.FromElement, q *queryState) error {
	switch r.kind {
	case joinPredicateResolver:
		if f.Space != r.space && q.owns(f.Space) {
			return semanticErrorf(n, "join predicate refers to %s of another from clause space", f.Alias)
		}
	case joinTargetResolver:
		if f.Space != r.space {
			return semanticErrorf(n, "join target must be based on a from-element of its own space but %s is not", f.Alias)
		}
	}
	return nil
}

// seesResultVariables reports whether bare identifiers may refer to
// select-clause aliases.
func (r *resolver) seesResultVariables() bool {
	return r.kind == orderByResolver
}

// expandsCollections reports whether a bare plural attribute denotes its
// elements.
func (r *resolver) expandsCollections() bool {
	return r.kind == selectResolver
}
