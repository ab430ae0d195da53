// Package semantic resolves a parsed statement against a metamodel and
// produces its semantic query model.  Every path is bound to a
// from-element, implicit joins are materialized, parameters are collected
// and expression types are inferred.
package semantic

import (
	"fmt"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"go.uber.org/zap"
)

type analyzer struct {
	ctx *Context
}

// Analyze resolves stmt.  A Context compiles exactly one statement; the
// from-elements it creates remain available from ctx afterward.
func Analyze(stmt ast.Statement, ctx *Context) (sqm.Statement, error) {
	if err := ctx.acquire(); err != nil {
		return nil, err
	}
	a := &analyzer{ctx: ctx}
	out, kind, err := a.statement(stmt)
	if err != nil {
		ctx.metrics.failure(err)
		ctx.logger.Debug("statement failed", zap.Error(err))
		return nil, err
	}
	ctx.metrics.statement(kind)
	ctx.logger.Debug("statement compiled",
		zap.String("kind", kind),
		zap.Int("from_elements", len(ctx.elements)),
		zap.Int("parameters", len(out.Params())))
	return out, nil
}

func (a *analyzer) statement(stmt ast.Statement) (sqm.Statement, string, error) {
	switch stmt := stmt.(type) {
	case *ast.SelectStatement:
		out, err := a.selectStatement(stmt)
		return out, "select", err
	case *ast.InsertStatement:
		out, err := a.insertStatement(stmt)
		return out, "insert", err
	case *ast.UpdateStatement:
		out, err := a.updateStatement(stmt)
		return out, "update", err
	case *ast.DeleteStatement:
		out, err := a.deleteStatement(stmt)
		return out, "delete", err
	}
	return nil, "", &ParsingError{Msg: fmt.Sprintf("unexpected statement %T", stmt), Loc: locOf(stmt)}
}

func (a *analyzer) selectStatement(stmt *ast.SelectStatement) (*sqm.SelectStatement, error) {
	q, err := a.query(scope{}, stmt, stmt.Query, false)
	if err != nil {
		return nil, err
	}
	params, err := a.ctx.params.finish(stmt)
	if err != nil {
		return nil, err
	}
	return &sqm.SelectStatement{Node: stmt, Query: q, Parameters: params}, nil
}

// dmlScope creates the query block of an insert, update or delete, whose
// from clause is the target entity alone.
func (a *analyzer) dmlScope(target *ast.EntityName, alias *ast.ID, n ast.Node) (scope, *sqm.FromElement, error) {
	space := &sqm.FromElementSpace{}
	state := newQueryState(nil, &sqm.FromClause{Spaces: []*sqm.FromElementSpace{space}}, false)
	sc := scope{query: state, resolver: wherePaths}
	root, err := a.root(sc, target, alias, n)
	if err != nil {
		return scope{}, nil, err
	}
	root.Space = space
	space.Root = root
	return sc, root, nil
}

// targetAttribute resolves a path naming a singular attribute of the
// statement's target entity.
func (a *analyzer) targetAttribute(sc scope, root *sqm.FromElement, p *ast.Path) (*sqm.SingularAttributeRef, error) {
	x, err := a.navigablePath(sc, p)
	if err != nil {
		return nil, err
	}
	ref, ok := x.(*sqm.SingularAttributeRef)
	if !ok || ref.Source() != root {
		return nil, semanticErrorf(p, "%q is not a singular attribute of %s", p.Text(), root.Entity.Name)
	}
	return ref, nil
}

func (a *analyzer) insertStatement(stmt *ast.InsertStatement) (*sqm.InsertSelectStatement, error) {
	sc, root, err := a.dmlScope(stmt.Target, nil, stmt)
	if err != nil {
		return nil, err
	}
	out := &sqm.InsertSelectStatement{Node: stmt, Target: root}
	for _, field := range stmt.Fields {
		ref, err := a.targetAttribute(sc, root, field)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, ref)
	}
	// The select may not refer to the target so it is resolved in a
	// scope of its own.
	if out.Query, err = a.query(scope{}, stmt, stmt.Query, false); err != nil {
		return nil, err
	}
	sels := out.Query.Select.Selections
	if len(sels) != len(out.Fields) {
		return nil, semanticErrorf(stmt, "insert lists %d fields but selects %d values", len(out.Fields), len(sels))
	}
	for k, sel := range sels {
		imply(sel.Expr, out.Fields[k].Type())
	}
	if out.Parameters, err = a.ctx.params.finish(stmt); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *analyzer) updateStatement(stmt *ast.UpdateStatement) (*sqm.UpdateStatement, error) {
	sc, root, err := a.dmlScope(stmt.Target, stmt.Alias, stmt)
	if err != nil {
		return nil, err
	}
	if len(stmt.Set) == 0 {
		return nil, &ParsingError{Msg: "update has no set clause", Loc: locOf(stmt)}
	}
	out := &sqm.UpdateStatement{Node: stmt, Versioned: stmt.Versioned, Root: root}
	for _, set := range stmt.Set {
		target, err := a.targetAttribute(sc, root, set.LHS)
		if err != nil {
			return nil, err
		}
		value, err := a.expr(sc, set.RHS)
		if err != nil {
			return nil, err
		}
		imply(value, target.Type())
		out.Set = append(out.Set, &sqm.Assignment{Node: set, Target: target, Value: value})
	}
	if out.Where, err = a.optionalPredicate(sc, stmt.Where); err != nil {
		return nil, err
	}
	if out.Parameters, err = a.ctx.params.finish(stmt); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *analyzer) deleteStatement(stmt *ast.DeleteStatement) (*sqm.DeleteStatement, error) {
	sc, root, err := a.dmlScope(stmt.Target, stmt.Alias, stmt)
	if err != nil {
		return nil, err
	}
	out := &sqm.DeleteStatement{Node: stmt, Root: root}
	if out.Where, err = a.optionalPredicate(sc, stmt.Where); err != nil {
		return nil, err
	}
	if out.Parameters, err = a.ctx.params.finish(stmt); err != nil {
		return nil, err
	}
	return out, nil
}
