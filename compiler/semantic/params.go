package semantic

import (
	"slices"
	"strconv"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
)

// paramCollector gathers the parameters of a statement.  Every occurrence
// of a parameter shares one *sqm.Parameter.
type paramCollector struct {
	named      map[string]*sqm.Parameter
	positional map[int]*sqm.Parameter
	order      []*sqm.Parameter
}

func newParamCollector() *paramCollector {
	return &paramCollector{
		named:      make(map[string]*sqm.Parameter),
		positional: make(map[int]*sqm.Parameter),
	}
}

func (a *analyzer) namedParam(sc scope, p *ast.NamedParam) (*sqm.Parameter, error) {
	c := a.ctx.params
	if len(c.positional) != 0 {
		return nil, semanticErrorf(p, "cannot mix named parameter :%s with ordinal parameters", p.Name)
	}
	param, ok := c.named[p.Name]
	if !ok {
		param = &sqm.Parameter{Node: p, Name: p.Name}
		c.named[p.Name] = param
		c.order = append(c.order, param)
	}
	if sc.multiValued {
		param.AllowMultiValued = true
	}
	return param, nil
}

func (a *analyzer) positionalParam(sc scope, p *ast.PositionalParam) (*sqm.Parameter, error) {
	c := a.ctx.params
	if p.Position == "" {
		return nil, semanticErrorf(p, "unlabeled ordinal parameter '?' is not supported; use ?1, ?2, ...")
	}
	pos, err := strconv.Atoi(p.Position)
	if err != nil {
		return nil, semanticErrorf(p, "invalid ordinal parameter ?%s", p.Position)
	}
	if pos < 1 {
		return nil, semanticErrorf(p, "ordinal parameter ?%d is invalid: positions start at 1", pos)
	}
	if len(c.named) != 0 {
		return nil, semanticErrorf(p, "cannot mix ordinal parameter ?%d with named parameters", pos)
	}
	param, ok := c.positional[pos]
	if !ok {
		param = &sqm.Parameter{Node: p, Position: pos}
		c.positional[pos] = param
		c.order = append(c.order, param)
	}
	if sc.multiValued {
		param.AllowMultiValued = true
	}
	return param, nil
}

// finish checks that ordinal positions are contiguous and returns the
// parameters: named ones in order of first appearance, ordinal ones by
// position.
func (c *paramCollector) finish(stmt ast.Node) ([]*sqm.Parameter, error) {
	if len(c.positional) == 0 {
		return c.order, nil
	}
	positions := make([]int, 0, len(c.positional))
	for pos := range c.positional {
		positions = append(positions, pos)
	}
	slices.Sort(positions)
	params := make([]*sqm.Parameter, 0, len(positions))
	for k, pos := range positions {
		if pos != k+1 {
			return nil, semanticErrorf(stmt, "ordinal parameters are not contiguous: ?%d is missing", k+1)
		}
		params = append(params, c.positional[pos])
	}
	return params, nil
}
