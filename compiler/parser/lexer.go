package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokString
	tokNumber
	tokNamedParam
	tokPositionalParam
	tokOp
)

type token struct {
	typ  tokenType
	text string
	// lit is the literal type of a number token.
	lit string
	pos int
	end int // offset just past the token
}

func (t token) String() string {
	switch t.typ {
	case tokEOF:
		return "end of input"
	case tokString:
		return fmt.Sprintf("string '%s'", t.text)
	}
	return fmt.Sprintf("%q", t.text)
}

// is reports whether the token is the keyword kw (matched without regard
// to case) or the operator kw.
func (t token) is(kw string) bool {
	switch t.typ {
	case tokIdent:
		return strings.EqualFold(t.text, kw)
	case tokOp:
		return t.text == kw
	}
	return false
}

type scanError struct {
	msg string
	pos int
}

func (e *scanError) Error() string {
	return e.msg
}

var operators = []string{
	"<>", "!=", "<=", ">=", "||",
	"=", "<", ">", "+", "-", "*", "/", "%",
	"(", ")", "[", "]", "{", "}", ",", ".",
}

func scan(src string) ([]token, error) {
	var toks []token
	pos := 0
	for {
		for pos < len(src) {
			r, n := utf8.DecodeRuneInString(src[pos:])
			if !unicode.IsSpace(r) {
				break
			}
			pos += n
		}
		if pos >= len(src) {
			toks = append(toks, token{typ: tokEOF, pos: pos, end: pos})
			return toks, nil
		}
		tok, err := scanToken(src, pos)
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		pos = tok.end
	}
}

func scanToken(src string, pos int) (token, error) {
	c := src[pos]
	switch {
	case c == '\'':
		return scanString(src, pos)
	case isDigit(c):
		return scanNumber(src, pos), nil
	case c == ':':
		end := scanIdentEnd(src, pos+1)
		if end == pos+1 {
			return token{}, &scanError{"parameter name expected after ':'", pos}
		}
		return token{typ: tokNamedParam, text: src[pos+1 : end], pos: pos, end: end}, nil
	case c == '?':
		end := pos + 1
		for end < len(src) && isDigit(src[end]) {
			end++
		}
		return token{typ: tokPositionalParam, text: src[pos+1 : end], pos: pos, end: end}, nil
	}
	if end := scanIdentEnd(src, pos); end > pos {
		return token{typ: tokIdent, text: src[pos:end], pos: pos, end: end}, nil
	}
	for _, op := range operators {
		if strings.HasPrefix(src[pos:], op) {
			return token{typ: tokOp, text: op, pos: pos, end: pos + len(op)}, nil
		}
	}
	r, _ := utf8.DecodeRuneInString(src[pos:])
	return token{}, &scanError{fmt.Sprintf("unexpected character %q", r), pos}
}

// scanString scans a single-quoted string where a doubled quote stands for
// one quote.
func scanString(src string, pos int) (token, error) {
	var b strings.Builder
	k := pos + 1
	for k < len(src) {
		if src[k] == '\'' {
			if k+1 < len(src) && src[k+1] == '\'' {
				b.WriteByte('\'')
				k += 2
				continue
			}
			return token{typ: tokString, text: b.String(), pos: pos, end: k + 1}, nil
		}
		b.WriteByte(src[k])
		k++
	}
	return token{}, &scanError{"unterminated string", pos}
}

// scanNumber scans a numeric literal and classifies it by its form and
// suffix.  The token text keeps the suffix.
func scanNumber(src string, pos int) token {
	k := pos
	if src[k] == '0' && k+1 < len(src) && (src[k+1] == 'x' || src[k+1] == 'X') {
		k += 2
		for k < len(src) && isHexDigit(src[k]) {
			k++
		}
		if k < len(src) && (src[k] == 'l' || src[k] == 'L') {
			k++
		}
		return token{typ: tokNumber, lit: "hex", text: src[pos:k], pos: pos, end: k}
	}
	for k < len(src) && isDigit(src[k]) {
		k++
	}
	decimal := false
	if k+1 < len(src) && src[k] == '.' && isDigit(src[k+1]) {
		decimal = true
		k++
		for k < len(src) && isDigit(src[k]) {
			k++
		}
	}
	if k < len(src) && (src[k] == 'e' || src[k] == 'E') {
		j := k + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			decimal = true
			k = j
			for k < len(src) && isDigit(src[k]) {
				k++
			}
		}
	}
	digits := src[pos:k]
	lit := "integer"
	if decimal {
		lit = "double"
	} else if len(digits) > 1 && digits[0] == '0' {
		lit = "octal"
	}
	suffix := strings.ToLower(src[k:scanIdentEnd(src, k)])
	switch suffix {
	case "l":
		if !decimal {
			if lit == "integer" {
				lit = "long"
			}
			k++
		}
	case "bi":
		if !decimal {
			lit = "big_integer"
			k += 2
		}
	case "bd":
		lit = "big_decimal"
		k += 2
	case "f":
		lit = "float"
		k++
	case "d":
		lit = "double"
		k++
	}
	return token{typ: tokNumber, lit: lit, text: src[pos:k], pos: pos, end: k}
}

func scanIdentEnd(src string, pos int) int {
	k := pos
	for k < len(src) {
		r, n := utf8.DecodeRuneInString(src[k:])
		if r == '_' || r == '$' || unicode.IsLetter(r) || (k > pos && unicode.IsDigit(r)) {
			k += n
			continue
		}
		break
	}
	return k
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
