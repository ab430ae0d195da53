package semantic

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
)

var errBadNumber = errors.New("invalid number")

func (a *analyzer) literal(l *ast.Literal) (*sqm.Literal, error) {
	out := &sqm.Literal{Node: l, Text: l.Text}
	var host metamodel.HostType
	var err error
	switch l.Type {
	case "string":
		out.Kind, out.Value, host = sqm.StringLiteral, l.Text, metamodel.HostString
	case "character":
		r, n := utf8.DecodeRuneInString(l.Text)
		if n == 0 || n != len(l.Text) {
			return nil, semanticErrorf(l, "character literal must be a single character: %q", l.Text)
		}
		out.Kind, out.Value, host = sqm.CharacterLiteral, r, metamodel.HostCharacter
	case "integer":
		out.Kind, host = sqm.IntegerLiteral, metamodel.HostInteger
		out.Value, err = parseInt(l.Text, 10, 32)
	case "long":
		out.Kind, host = sqm.LongLiteral, metamodel.HostLong
		out.Value, err = parseInt(trimSuffix(l.Text, "l"), 10, 64)
	case "big_integer":
		out.Kind, host = sqm.BigIntegerLiteral, metamodel.HostBigInteger
		i, ok := new(big.Int).SetString(trimSuffix(l.Text, "bi"), 10)
		if !ok {
			err = errBadNumber
		}
		out.Value = i
	case "hex", "octal":
		// The L suffix makes a long.
		base, digits := 8, l.Text
		if l.Type == "hex" {
			base, digits = 16, digits[2:]
		}
		out.Kind, host = sqm.IntegerLiteral, metamodel.HostInteger
		bits := 32
		if trimmed := trimSuffix(digits, "l"); trimmed != digits {
			out.Kind, host = sqm.LongLiteral, metamodel.HostLong
			bits, digits = 64, trimmed
		}
		out.Value, err = parseInt(digits, base, bits)
	case "float":
		out.Kind, host = sqm.FloatLiteral, metamodel.HostFloat
		var f float64
		f, err = strconv.ParseFloat(trimSuffix(l.Text, "f"), 32)
		out.Value = float32(f)
	case "double":
		out.Kind, host = sqm.DoubleLiteral, metamodel.HostDouble
		out.Value, err = strconv.ParseFloat(trimSuffix(l.Text, "d"), 64)
	case "big_decimal":
		out.Kind, host = sqm.BigDecimalLiteral, metamodel.HostBigDecimal
		r, ok := new(big.Rat).SetString(trimSuffix(l.Text, "bd"))
		if !ok {
			err = errBadNumber
		}
		out.Value = r
	case "boolean":
		out.Kind, out.Value, host = sqm.BooleanLiteral, strings.EqualFold(l.Text, "true"), metamodel.HostBoolean
	case "null":
		out.Kind = sqm.NullLiteral
		return out, nil
	case "date", "time", "timestamp":
		return a.temporal(l, out)
	default:
		return nil, &ParsingError{Msg: fmt.Sprintf("unknown literal type %q", l.Type), Loc: locOf(l)}
	}
	if err != nil {
		return nil, &LiteralNumberFormatError{Text: l.Text, Err: err, Loc: locOf(l)}
	}
	out.Inferred = a.basic(host)
	return out, nil
}

func (a *analyzer) temporal(l *ast.Literal, out *sqm.Literal) (*sqm.Literal, error) {
	text := l.Text
	var host metamodel.HostType
	switch l.Type {
	case "date":
		out.Kind, host = sqm.DateLiteral, metamodel.HostDate
	case "time":
		// A time of day parses as a time on the epoch date.
		out.Kind, host = sqm.TimeLiteral, metamodel.HostTime
		text = "1970-01-01 " + text
	default:
		out.Kind, host = sqm.TimestampLiteral, metamodel.HostTimestamp
	}
	t, err := dateparse.ParseStrict(text)
	if err != nil {
		return nil, semanticErrorf(l, "invalid %s literal %q: %s", l.Type, l.Text, err)
	}
	out.Value = t
	out.Inferred = a.basic(host)
	return out, nil
}

func parseInt(s string, base, bits int) (any, error) {
	v, err := strconv.ParseInt(s, base, bits)
	if err != nil {
		return nil, err
	}
	if bits == 32 {
		return int32(v), nil
	}
	return v, nil
}

// trimSuffix removes suffix from s without regard to case.
func trimSuffix(s, suffix string) string {
	if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s[:len(s)-len(suffix)]
	}
	return s
}
