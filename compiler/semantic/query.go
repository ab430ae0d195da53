package semantic

import (
	"strings"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
	"go.uber.org/zap"
)

// query resolves one query block of the statement or subquery n.  The from
// clause comes first since it defines the aliases every other clause refers
// to.  The block's state lives in the scope value so it is dropped on return
// whether or not the walk failed.
func (a *analyzer) query(sc scope, n ast.Node, spec *ast.QuerySpec, subquery bool) (*sqm.QuerySpec, error) {
	if spec == nil {
		return nil, &ParsingError{Msg: "missing query", Loc: locOf(n)}
	}
	out := &sqm.QuerySpec{Node: spec, From: &sqm.FromClause{}}
	sc = scope{query: newQueryState(sc.query, out.From, subquery), resolver: selectPaths}
	if err := a.fromClause(sc, spec); err != nil {
		return nil, err
	}
	var err error
	if spec.Select == nil {
		out.Select, err = a.implicitSelect(sc, spec)
	} else {
		out.Select, err = a.selectClause(sc.with(selectPaths), spec.Select)
	}
	if err != nil {
		return nil, err
	}
	where := sc.with(wherePaths)
	if out.Where, err = a.optionalPredicate(where, spec.Where); err != nil {
		return nil, err
	}
	if out.GroupBy, err = a.exprs(where, spec.GroupBy); err != nil {
		return nil, err
	}
	if out.Having, err = a.optionalPredicate(where, spec.Having); err != nil {
		return nil, err
	}
	if len(spec.OrderBy) != 0 {
		if subquery {
			if err := a.strict(spec.OrderBy[0], SubqueryOrderBy, "order by is not allowed in a subquery"); err != nil {
				return nil, err
			}
		}
		if out.OrderBy, err = a.orderBy(sc.with(orderByPaths), spec.OrderBy); err != nil {
			return nil, err
		}
	}
	if err := a.limitOffset(sc.with(orderByPaths), spec, out, subquery); err != nil {
		return nil, err
	}
	return out, nil
}

// implicitSelect selects the root of a query without a select clause.
func (a *analyzer) implicitSelect(sc scope, spec *ast.QuerySpec) (*sqm.SelectClause, error) {
	if err := a.strict(spec, ImplicitSelect, "query has no select clause"); err != nil {
		return nil, err
	}
	root := sc.query.soleRoot()
	if root == nil {
		return nil, semanticErrorf(spec, "cannot infer the select clause of a query with %d roots", len(sc.query.from.Spaces))
	}
	a.ctx.logger.Warn("select clause inferred; queries without a select clause are deprecated",
		zap.Stringer("root", root))
	sel := &sqm.Selection{Node: spec, Expr: &sqm.EntityRef{Node: spec, From: root}}
	return &sqm.SelectClause{Selections: []*sqm.Selection{sel}, Inferred: true}, nil
}

func (a *analyzer) selectClause(sc scope, sel *ast.SelectClause) (*sqm.SelectClause, error) {
	out := &sqm.SelectClause{Distinct: sel.Distinct}
	for _, item := range sel.Items {
		e, err := a.selection(sc, item)
		if err != nil {
			return nil, err
		}
		s := &sqm.Selection{Node: item, Expr: e}
		if item.Alias != nil {
			s.Alias = item.Alias.Name
			if err := a.registerSelection(sc.query, s, item.Alias); err != nil {
				return nil, err
			}
		}
		out.Selections = append(out.Selections, s)
	}
	return out, nil
}

// selection resolves a select item or an argument of a dynamic
// instantiation.
func (a *analyzer) selection(sc scope, item *ast.SelectItem) (sqm.Expr, error) {
	if n, ok := item.Expr.(*ast.NewExpr); ok {
		return a.instantiation(sc, n)
	}
	return a.expr(sc, item.Expr)
}

func (a *analyzer) instantiation(sc scope, n *ast.NewExpr) (*sqm.DynamicInstantiation, error) {
	out := &sqm.DynamicInstantiation{Node: n}
	switch strings.ToLower(n.Target) {
	case "list":
		out.Target = sqm.ListTarget
	case "map":
		out.Target = sqm.MapTarget
	default:
		class, err := a.ctx.model.ClassByName(n.Target)
		if err != nil {
			return nil, semanticErrorf(n, "could not resolve instantiation target %q: %s", n.Target, err)
		}
		out.Target, out.Class = sqm.ClassTarget, class
	}
	for _, item := range n.Args {
		e, err := a.selection(sc, item)
		if err != nil {
			return nil, err
		}
		arg := &sqm.InstantiationArg{Expr: e}
		if item.Alias != nil {
			arg.Alias = item.Alias.Name
		}
		out.Args = append(out.Args, arg)
	}
	return out, nil
}

func (a *analyzer) orderBy(sc scope, items []*ast.SortItem) ([]*sqm.SortSpecification, error) {
	var out []*sqm.SortSpecification
	for _, item := range items {
		e, err := a.expr(sc, item.Expr)
		if err != nil {
			return nil, err
		}
		spec := &sqm.SortSpecification{Node: item, Expr: e}
		switch strings.ToLower(item.Order) {
		case "", "asc":
		case "desc":
			spec.Order = sqm.Descending
		default:
			return nil, &ParsingError{Msg: "unknown sort order " + item.Order, Loc: locOf(item)}
		}
		switch strings.ToLower(item.Nulls) {
		case "":
		case "first":
			spec.Nulls = sqm.NullsFirst
		case "last":
			spec.Nulls = sqm.NullsLast
		default:
			return nil, &ParsingError{Msg: "unknown null precedence " + item.Nulls, Loc: locOf(item)}
		}
		out = append(out, spec)
	}
	return out, nil
}

func (a *analyzer) limitOffset(sc scope, spec *ast.QuerySpec, out *sqm.QuerySpec, subquery bool) error {
	if spec.Limit == nil && spec.Offset == nil {
		return nil
	}
	n := ast.Node(spec.Limit)
	if spec.Limit == nil {
		n = spec.Offset
	}
	if err := a.strict(n, LimitOffset, "limit and offset are not part of the standard"); err != nil {
		return err
	}
	if subquery && len(spec.OrderBy) == 0 {
		return semanticErrorf(n, "limit or offset in a subquery requires an order by")
	}
	integer := a.basic(metamodel.HostInteger)
	var err error
	if spec.Limit != nil {
		if out.Limit, err = a.expr(sc, spec.Limit); err != nil {
			return err
		}
		imply(out.Limit, integer)
	}
	if spec.Offset != nil {
		if out.Offset, err = a.expr(sc, spec.Offset); err != nil {
			return err
		}
		imply(out.Offset, integer)
	}
	return nil
}
