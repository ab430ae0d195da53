package ast

import (
	"fmt"

	"github.com/brimdata/sqm/pkg/unpack"
	"github.com/goccy/go-json"
)

var unpacker = unpack.New(
	Assignment{},
	BetweenExpr{},
	BinaryExpr{},
	CallExpr{},
	CaseExpr{},
	CastExpr{},
	CrossJoin{},
	DeleteStatement{},
	EntityName{},
	ExistsExpr{},
	FromClause{},
	FromSpace{},
	ID{},
	IndexExpr{},
	InExpr{},
	InsertStatement{},
	IsEmptyExpr{},
	IsNullExpr{},
	LikeExpr{},
	Literal{},
	MemberOfExpr{},
	NamedParam{},
	NewExpr{},
	Path{},
	PositionalParam{},
	QualifiedJoin{},
	QuerySpec{},
	Root{},
	SelectClause{},
	SelectItem{},
	SelectStatement{},
	SortItem{},
	SubqueryExpr{},
	TrimExpr{},
	UnaryExpr{},
	UpdateStatement{},
	When{},
)

// UnmarshalStatement transforms a JSON representation of a statement into
// a Statement.
func UnmarshalStatement(buf []byte) (Statement, error) {
	var stmt Statement
	if err := unpacker.Unmarshal(buf, &stmt); err != nil {
		return nil, err
	}
	return stmt, nil
}

func UnmarshalObject(anon any) (Statement, error) {
	var stmt Statement
	if err := unpacker.UnmarshalObject(anon, &stmt); err != nil {
		return nil, fmt.Errorf("internal error: ast.UnmarshalObject: %w", err)
	}
	return stmt, nil
}

// Copy returns a deep copy of a statement.
func Copy(in Statement) Statement {
	b, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	out, err := UnmarshalStatement(b)
	if err != nil {
		panic(err)
	}
	return out
}
