package semantic

import (
	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
)

// Types are stored in metamodel.Type interfaces.  The helpers here convert
// nil *BasicType values to a nil interface so that a missing type always
// compares equal to nil.

func (a *analyzer) basic(h metamodel.HostType) metamodel.Type {
	return typeOf(a.ctx.model.ResolveBasicType(h))
}

func (a *analyzer) basicFunc(h metamodel.HostType) *metamodel.BasicType {
	return a.ctx.model.ResolveBasicType(h)
}

func typeOf(b *metamodel.BasicType) metamodel.Type {
	if b == nil {
		return nil
	}
	return b
}

func basicOf(t metamodel.Type) *metamodel.BasicType {
	b, _ := t.(*metamodel.BasicType)
	return b
}

// imply gives e the type t when e takes its type from its context.
func imply(e sqm.Expr, t metamodel.Type) {
	if t == nil {
		return
	}
	if acceptor, ok := e.(sqm.ImpliedTypeAcceptor); ok {
		acceptor.SetImpliedType(t)
	}
}

// propagate gives every pending operand the type of the first operand
// with a known type and returns that type.
func propagate(exprs ...sqm.Expr) metamodel.Type {
	var t metamodel.Type
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if t = e.Type(); t != nil {
			break
		}
	}
	for _, e := range exprs {
		if e != nil {
			imply(e, t)
		}
	}
	return t
}

// numeric checks that an arithmetic operand is numeric when its type is
// known and returns its basic type.
func numeric(n ast.Node, e sqm.Expr) (*metamodel.BasicType, error) {
	t := e.Type()
	if t == nil {
		return nil, nil
	}
	b := basicOf(t)
	if b == nil || !(b.Host.IsNumeric() || b.Host == metamodel.HostObject) {
		return nil, semanticErrorf(n, "arithmetic operand of type %s is not numeric", t.TypeName())
	}
	return b, nil
}
