package semantic

import (
	"strings"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
)

// sameAsArg marks a function whose result has the type of its first
// argument.
const sameAsArg metamodel.HostType = -1

// A scalar describes a standard scalar function.  args gives the implied
// type of each argument; the last entry repeats for variadic functions.
type scalar struct {
	min, max int // max < 0 means variadic
	result   metamodel.HostType
	args     []metamodel.HostType
}

var scalars = map[string]scalar{
	"substring":         {2, 3, metamodel.HostString, []metamodel.HostType{metamodel.HostString, metamodel.HostInteger, metamodel.HostInteger}},
	"upper":             {1, 1, metamodel.HostString, []metamodel.HostType{metamodel.HostString}},
	"lower":             {1, 1, metamodel.HostString, []metamodel.HostType{metamodel.HostString}},
	"concat":            {2, -1, metamodel.HostString, []metamodel.HostType{metamodel.HostString}},
	"length":            {1, 1, metamodel.HostInteger, []metamodel.HostType{metamodel.HostString}},
	"locate":            {2, 3, metamodel.HostInteger, []metamodel.HostType{metamodel.HostString, metamodel.HostString, metamodel.HostInteger}},
	"abs":               {1, 1, sameAsArg, nil},
	"sqrt":              {1, 1, metamodel.HostDouble, nil},
	"mod":               {2, 2, metamodel.HostInteger, []metamodel.HostType{metamodel.HostInteger, metamodel.HostInteger}},
	"current_date":      {0, 0, metamodel.HostDate, nil},
	"current_time":      {0, 0, metamodel.HostTime, nil},
	"current_timestamp": {0, 0, metamodel.HostTimestamp, nil},
}

func (a *analyzer) call(sc scope, c *ast.CallExpr) (sqm.Expr, error) {
	name := strings.ToLower(c.Name)
	switch name {
	case "count", "avg", "sum", "max", "min":
		return a.aggregate(sc, c, name)
	case "key", "value", "entry", "index",
		"elements", "indices", "minelement", "maxelement", "minindex", "maxindex":
		return a.collectionCall(sc, c, name)
	case "coalesce":
		if len(c.Args) < 2 {
			return nil, semanticErrorf(c, "coalesce() requires at least two arguments")
		}
		args, err := a.callArgs(sc, c, true)
		if err != nil {
			return nil, err
		}
		return &sqm.Coalesce{Node: c, Args: args, Inferred: propagate(args...)}, nil
	case "nullif":
		if len(c.Args) != 2 {
			return nil, semanticErrorf(c, "nullif() requires two arguments")
		}
		args, err := a.callArgs(sc, c, false)
		if err != nil {
			return nil, err
		}
		return &sqm.NullIf{Node: c, LHS: args[0], RHS: args[1], Inferred: propagate(args...)}, nil
	case "size":
		if len(c.Args) != 1 {
			return nil, semanticErrorf(c, "size() takes a single collection argument")
		}
		collection, err := a.pluralPath(sc, c.Args[0], "size()")
		if err != nil {
			return nil, err
		}
		return &sqm.Function{Node: c, Name: name, Args: []sqm.Expr{collection}, Inferred: a.basic(metamodel.HostInteger)}, nil
	case "type":
		return a.typeOf(sc, c)
	case "function":
		return a.genericCall(sc, c)
	}
	if c.Star || c.Distinct {
		return nil, semanticErrorf(c, "%s() is not an aggregate function", name)
	}
	if s, ok := scalars[name]; ok {
		return a.scalar(sc, c, name, s)
	}
	if err := a.strict(c, FunctionCall, "%s() is not a standard function; use function('%s', ...)", name, c.Name); err != nil {
		return nil, err
	}
	args, err := a.callArgs(sc, c, true)
	if err != nil {
		return nil, err
	}
	return &sqm.Function{Node: c, Name: c.Name, Args: args}, nil
}

// callArgs resolves the arguments of a call.  Outside of strict mode the
// last argument of a variadic call may be a multi-valued parameter.
func (a *analyzer) callArgs(sc scope, c *ast.CallExpr, variadic bool) ([]sqm.Expr, error) {
	args := make([]sqm.Expr, 0, len(c.Args))
	for k, arg := range c.Args {
		last := k == len(c.Args)-1
		x, err := a.expr(sc.allowMultiValued(variadic && last && !a.ctx.strict), arg)
		if err != nil {
			return nil, err
		}
		args = append(args, x)
	}
	return args, nil
}

func (a *analyzer) aggregate(sc scope, c *ast.CallExpr, name string) (sqm.Expr, error) {
	out := &sqm.AggregateFunction{Node: c, Name: name, Distinct: c.Distinct}
	if c.Star {
		if name != "count" {
			return nil, semanticErrorf(c, "%s(*) is not allowed", name)
		}
		out.Inferred = typeOf(metamodel.CountResultType(a.basicFunc))
		return out, nil
	}
	if len(c.Args) != 1 {
		return nil, semanticErrorf(c, "%s() takes a single argument", name)
	}
	arg, err := a.expr(sc, c.Args[0])
	if err != nil {
		return nil, err
	}
	out.Arg = arg
	switch name {
	case "count":
		out.Inferred = typeOf(metamodel.CountResultType(a.basicFunc))
	case "avg":
		out.Inferred = typeOf(metamodel.AvgResultType(a.basicFunc))
	case "sum":
		b, err := numeric(c.Args[0], arg)
		if err != nil {
			return nil, err
		}
		out.Inferred = typeOf(a.ctx.model.ResolveSumResultType(b))
	default:
		out.Inferred = arg.Type()
	}
	return out, nil
}

func (a *analyzer) scalar(sc scope, c *ast.CallExpr, name string, s scalar) (sqm.Expr, error) {
	if n := len(c.Args); n < s.min || (s.max >= 0 && n > s.max) {
		return nil, semanticErrorf(c, "wrong number of arguments to %s()", name)
	}
	args, err := a.callArgs(sc, c, s.max < 0)
	if err != nil {
		return nil, err
	}
	for k, arg := range args {
		if len(s.args) == 0 {
			break
		}
		imply(arg, a.basic(s.args[min(k, len(s.args)-1)]))
	}
	out := &sqm.Function{Node: c, Name: name, Args: args}
	if s.result == sameAsArg {
		out.Inferred = args[0].Type()
	} else {
		out.Inferred = a.basic(s.result)
	}
	return out, nil
}

// genericCall resolves the standard "function('name', args...)" form.
func (a *analyzer) genericCall(sc scope, c *ast.CallExpr) (sqm.Expr, error) {
	if len(c.Args) == 0 {
		return nil, semanticErrorf(c, "function() requires a function name")
	}
	lit, ok := c.Args[0].(*ast.Literal)
	if !ok || lit.Type != "string" {
		return nil, semanticErrorf(c.Args[0], "function name must be a string literal")
	}
	rest := &ast.CallExpr{Args: c.Args[1:]}
	args, err := a.callArgs(sc, rest, true)
	if err != nil {
		return nil, err
	}
	return &sqm.Function{Node: c, Name: lit.Text, Generic: true, Args: args}, nil
}

// typeOf resolves type(path) and type(:param).
func (a *analyzer) typeOf(sc scope, c *ast.CallExpr) (sqm.Expr, error) {
	if len(c.Args) != 1 {
		return nil, semanticErrorf(c, "type() takes a single argument")
	}
	switch arg := c.Args[0].(type) {
	case *ast.NamedParam, *ast.PositionalParam:
		x, err := a.expr(sc, arg)
		if err != nil {
			return nil, err
		}
		return &sqm.ParameterizedEntityType{Node: c, Param: x.(*sqm.Parameter)}, nil
	case *ast.Path:
		x, err := a.navigablePath(sc, arg)
		if err != nil {
			return nil, err
		}
		ref, ok := x.(sqm.Ref)
		if !ok {
			return nil, semanticErrorf(arg, "type() requires an entity-valued path")
		}
		if _, ok := ref.Type().(*metamodel.EntityType); !ok {
			return nil, semanticErrorf(arg, "type() requires an entity-valued path but %q is not one", arg.Text())
		}
		return &sqm.EntityTypeOf{Node: c, Ref: ref}, nil
	}
	return nil, semanticErrorf(c.Args[0], "type() requires a path or parameter")
}
