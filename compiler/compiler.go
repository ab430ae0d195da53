// Package compiler turns query text or an externally parsed syntax tree
// into a resolved semantic query model.
package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/parser"
	"github.com/brimdata/sqm/compiler/semantic"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/compiler/srcfiles"
	"github.com/brimdata/sqm/metamodel"
	"golang.org/x/sync/errgroup"
)

// Compiler compiles statements against one model.  Each statement gets its
// own semantic.Context so a Compiler may be shared by goroutines when its
// model may.
type Compiler struct {
	model metamodel.Model
	opts  semantic.Options
}

func New(model metamodel.Model, opts semantic.Options) *Compiler {
	return &Compiler{model: model, opts: opts}
}

// Compile parses and analyzes query.
func (c *Compiler) Compile(query string) (sqm.Statement, error) {
	p, err := parser.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	return c.CompileAST(p)
}

// CompileAST analyzes a parsed statement.  When p carries its source text,
// an analysis error is returned as a srcfiles.ErrorList pointing at the
// offending text.  errors.As still reaches the semantic error.
func (c *Compiler) CompileAST(p *parser.AST) (sqm.Statement, error) {
	stmt, err := semantic.Analyze(p.Parsed(), semantic.NewContext(c.model, c.opts))
	if err != nil {
		return nil, locate(p.Files(), err)
	}
	return stmt, nil
}

func locate(files *srcfiles.List, err error) error {
	var n ast.Node
	if files == nil || !errors.As(err, &n) || n.Pos() < 0 {
		return err
	}
	files.Locate(err, n.Pos(), n.End())
	return files.Error()
}

// Source is a syntax tree along with the name used in its errors.
type Source struct {
	Name string
	AST  *parser.AST
}

// CompileAll compiles srcs concurrently with at most limit compiles in
// flight (no limit when limit <= 0).  The statements are returned in the
// order of srcs.  The first failure cancels the compiles not yet started.
func (c *Compiler) CompileAll(ctx context.Context, srcs []Source, limit int) ([]sqm.Statement, error) {
	stmts := make([]sqm.Statement, len(srcs))
	group, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}
	for k, src := range srcs {
		k, src := k, src
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stmt, err := c.CompileAST(src.AST)
			if err != nil {
				if src.Name != "" {
					err = fmt.Errorf("%s: %w", src.Name, err)
				}
				return err
			}
			stmts[k] = stmt
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return stmts, nil
}
