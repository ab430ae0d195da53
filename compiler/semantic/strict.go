package semantic

import (
	"fmt"
	"strings"

	"github.com/brimdata/sqm/compiler/ast"
	"go.uber.org/zap"
)

// strict returns a StrictComplianceError when strict mode is on and nil
// otherwise.
func (a *analyzer) strict(n ast.Node, v ViolationType, format string, args ...any) error {
	if !a.ctx.strict {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	a.ctx.logger.Debug("strict compliance violation", zap.Stringer("violation", v), zap.String("detail", msg))
	return &StrictComplianceError{Type: v, Msg: msg, Loc: locOf(n)}
}

func (a *analyzer) checkReservedAlias(alias *ast.ID) error {
	if !reservedWords[strings.ToLower(alias.Name)] {
		return nil
	}
	return a.strict(alias, ReservedWordAsAlias, "%q is a reserved word and cannot be used as an alias", alias.Name)
}

// reservedWords are the reserved identifiers of the standard query
// language.
var reservedWords = map[string]bool{
	"abs": true, "all": true, "and": true, "any": true, "as": true,
	"asc": true, "avg": true, "between": true, "bit_length": true,
	"both": true, "by": true, "case": true, "char_length": true,
	"character_length": true, "class": true, "coalesce": true,
	"concat": true, "count": true, "current_date": true,
	"current_time": true, "current_timestamp": true, "delete": true,
	"desc": true, "distinct": true, "else": true, "empty": true,
	"end": true, "entry": true, "escape": true, "exists": true,
	"false": true, "fetch": true, "from": true, "function": true,
	"group": true, "having": true, "in": true, "index": true,
	"inner": true, "is": true, "join": true, "key": true,
	"leading": true, "left": true, "length": true, "like": true,
	"locate": true, "lower": true, "max": true, "member": true,
	"min": true, "mod": true, "new": true, "not": true, "null": true,
	"nullif": true, "object": true, "of": true, "on": true, "or": true,
	"order": true, "outer": true, "position": true, "select": true,
	"set": true, "size": true, "some": true, "sqrt": true,
	"substring": true, "sum": true, "then": true, "trailing": true,
	"treat": true, "trim": true, "true": true, "type": true,
	"unknown": true, "update": true, "upper": true, "value": true,
	"when": true, "where": true,
}
