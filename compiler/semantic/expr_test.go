package semantic_test

import (
	"errors"
	"math/big"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/brimdata/sqm/compiler/semantic"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiterals(t *testing.T) {
	stmt, _ := mustCompile(t, "select 1, 1L, 1.5, 1.5F, 2D, 3BD, 4BI, 0x1F, 0x1FL, 017, 'it''s', true, null from Person p")
	var values []any
	var types []string
	for _, e := range selections(stmt) {
		lit := e.(*sqm.Literal)
		values = append(values, lit.Value)
		if lit.Type() == nil {
			types = append(types, "?")
		} else {
			types = append(types, lit.Type().TypeName())
		}
	}
	assert.Equal(t, []string{
		"integer", "long", "double", "float", "double", "big_decimal", "big_integer",
		"integer", "long", "integer", "string", "boolean", "?",
	}, types)
	assert.Equal(t, int32(1), values[0])
	assert.Equal(t, int64(1), values[1])
	assert.Equal(t, 1.5, values[2])
	assert.Equal(t, float32(1.5), values[3])
	assert.Equal(t, 2.0, values[4])
	assert.Equal(t, 0, values[5].(*big.Rat).Cmp(big.NewRat(3, 1)))
	assert.Equal(t, "4", values[6].(*big.Int).String())
	assert.Equal(t, int32(31), values[7])
	assert.Equal(t, int64(31), values[8])
	assert.Equal(t, int32(15), values[9])
	assert.Equal(t, "it's", values[10])
	assert.Equal(t, true, values[11])
	assert.Nil(t, values[12])
}

func TestNullTakesTypeFromContext(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p where p.name = null")
	cmp := stmt.Query.Where.(*sqm.Comparison)
	assert.Equal(t, "string", cmp.RHS.Type().TypeName())
}

func TestIntegerOverflow(t *testing.T) {
	err := compileError(t, "select 2147483648 from Person p", false)
	var numErr *semantic.LiteralNumberFormatError
	require.True(t, errors.As(err, &numErr))
	assert.Equal(t, "2147483648", numErr.Text)
	assert.ErrorIs(t, err, strconv.ErrRange)

	stmt, _ := mustCompile(t, "select 2147483648L from Person p")
	assert.Equal(t, int64(2147483648), selections(stmt)[0].(*sqm.Literal).Value)
}

func TestTemporalLiterals(t *testing.T) {
	stmt, _ := mustCompile(t, "select {d '2000-01-31'}, {t '10:20:30'}, {ts '2020-01-01 10:00:00'} from Person p")
	sels := selections(stmt)
	date := sels[0].(*sqm.Literal)
	assert.Equal(t, sqm.DateLiteral, date.Kind)
	assert.Equal(t, "date", date.Type().TypeName())
	assert.Equal(t, time.Date(2000, 1, 31, 0, 0, 0, 0, time.UTC), date.Value)
	tm := sels[1].(*sqm.Literal).Value.(time.Time)
	assert.Equal(t, 10, tm.Hour())
	assert.Equal(t, 30, tm.Second())
	assert.Equal(t, "timestamp", sels[2].Type().TypeName())

	err := compileError(t, "select {d 'yesterday'} from Person p", false)
	var semErr *semantic.SemanticError
	assert.True(t, errors.As(err, &semErr))
}

func TestConcatAndCase(t *testing.T) {
	stmt, _ := mustCompile(t, "select p.name || ' ' || p.nickName, case when p.age < 18 then 'minor' else 'adult' end, case p.age when 1 then p.height end from Person p")
	sels := selections(stmt)
	assert.Equal(t, "string", sels[0].Type().TypeName())
	searched := sels[1].(*sqm.CaseSearched)
	assert.Equal(t, "string", searched.Type().TypeName())
	require.Len(t, searched.Whens, 1)
	assert.IsType(t, &sqm.Comparison{}, searched.Whens[0].When)
	simple := sels[2].(*sqm.CaseSimple)
	assert.Equal(t, "short", simple.Type().TypeName())
}

func TestPredicates(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p where p.name like 'J%' escape '\\' and p.age between ?1 and ?2 and p.nickName is not null")
	params := stmt.Params()
	require.Len(t, params, 2)
	assert.Equal(t, "integer", params[0].AnticipatedType.TypeName())
	junction := stmt.Query.Where.(*sqm.Junction)
	inner := junction.LHS.(*sqm.Junction)
	like := inner.LHS.(*sqm.Like)
	re := regexp.MustCompile(like.PatternRegexp)
	assert.True(t, re.MatchString("John"))
	assert.True(t, re.MatchString("J\nx"))
	assert.False(t, re.MatchString("Bob"))
	between := inner.RHS.(*sqm.Between)
	assert.False(t, between.Not)
	isNull := junction.RHS.(*sqm.IsNull)
	assert.True(t, isNull.Not)

	err := compileError(t, "select p from Person p where p.name like 'J%' escape 'ab'", false)
	assert.EqualError(t, err, "like escape must be a single character")
	err = compileError(t, "select p from Person p where p.name", false)
	assert.EqualError(t, err, "expression of type string is not a predicate")
}

func TestMemberOfImpliesElementType(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p where :tag member of p.tags and p.friends is empty")
	assert.Equal(t, "string", stmt.Params()[0].AnticipatedType.TypeName())
	junction := stmt.Query.Where.(*sqm.Junction)
	member := junction.LHS.(*sqm.MemberOf)
	assert.Equal(t, "tags", member.Collection.Attribute.Name)
	empty := junction.RHS.(*sqm.IsEmpty)
	assert.Equal(t, "friends", empty.Collection.Attribute.Name)
	assert.Empty(t, stmt.Query.From.Spaces[0].Joins)

	err := compileError(t, "select p from Person p where p.name is empty", false)
	assert.EqualError(t, err, `is empty requires a collection but "p.name" is not one`)
}

func TestInSubquery(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p where p.employer.id in (select c.id from Company c) and p.id not in (1, 2, 3)")
	junction := stmt.Query.Where.(*sqm.Junction)
	in := junction.LHS.(*sqm.InSubquery)
	assert.Equal(t, "long", in.Subquery.Type().TypeName())
	list := junction.RHS.(*sqm.InList)
	assert.True(t, list.Not)
	assert.Len(t, list.List, 3)
}

func TestAggregates(t *testing.T) {
	stmt, _ := mustCompile(t, "select count(*), count(distinct p.name), avg(p.age), sum(p.height), sum(p.weight), sum(p.salary), max(p.birth) from Person p group by p.name having count(*) > 1")
	var types []string
	for _, e := range selections(stmt) {
		types = append(types, e.Type().TypeName())
	}
	assert.Equal(t, []string{"long", "long", "double", "long", "double", "big_decimal", "date"}, types)
	count := selections(stmt)[1].(*sqm.AggregateFunction)
	assert.True(t, count.Distinct)
	assert.Len(t, stmt.Query.GroupBy, 1)
	assert.NotNil(t, stmt.Query.Having)

	err := compileError(t, "select sum(*) from Person p", false)
	assert.EqualError(t, err, "sum(*) is not allowed")
	err = compileError(t, "select sum(p.name) from Person p", false)
	assert.EqualError(t, err, "arithmetic operand of type string is not numeric")
}

func TestScalarFunctions(t *testing.T) {
	stmt, _ := mustCompile(t, "select upper(p.name), length(p.name), locate('a', p.name), abs(p.weight), sqrt(p.age), mod(p.age, 2), current_date, substring(p.name, ?1, ?2) from Person p")
	var types []string
	for _, e := range selections(stmt) {
		types = append(types, e.Type().TypeName())
	}
	assert.Equal(t, []string{"string", "integer", "integer", "float", "double", "integer", "date", "string"}, types)
	for _, p := range stmt.Params() {
		assert.Equal(t, "integer", p.AnticipatedType.TypeName())
	}

	err := compileError(t, "select upper(p.name, p.name) from Person p", false)
	assert.EqualError(t, err, "wrong number of arguments to upper()")
	err = compileError(t, "select upper(distinct p.name) from Person p", false)
	assert.EqualError(t, err, "upper() is not an aggregate function")
}

func TestGenericAndUnknownFunctions(t *testing.T) {
	stmt, _ := mustCompile(t, "select function('soundex', p.name), soundex(p.name), coalesce(p.nickName, p.name), nullif(p.age, 0) from Person p")
	sels := selections(stmt)
	generic := sels[0].(*sqm.Function)
	assert.True(t, generic.Generic)
	assert.Equal(t, "soundex", generic.Name)
	assert.Len(t, generic.Args, 1)
	assert.False(t, sels[1].(*sqm.Function).Generic)
	assert.Equal(t, "string", sels[2].Type().TypeName())
	assert.Equal(t, "integer", sels[3].Type().TypeName())

	err := compileError(t, "select function(p.name) from Person p", false)
	assert.EqualError(t, err, "function name must be a string literal")
	err = compileError(t, "select coalesce(p.name) from Person p", false)
	assert.EqualError(t, err, "coalesce() requires at least two arguments")
}

func TestTrimAndCast(t *testing.T) {
	stmt, _ := mustCompile(t, "select trim(p.name), trim(leading 'x' from p.name), cast(p.age as string) from Person p")
	sels := selections(stmt)
	assert.Equal(t, "both", sels[0].(*sqm.Trim).Spec)
	assert.Equal(t, "leading", sels[1].(*sqm.Trim).Spec)
	assert.Equal(t, "string", sels[2].Type().TypeName())

	err := compileError(t, "select trim(both 'xy' from p.name) from Person p", false)
	assert.EqualError(t, err, "trim character must be a single character")
	err = compileError(t, "select cast(p.age as widget) from Person p", false)
	assert.EqualError(t, err, `unknown cast target type "widget"`)
}

func TestTypeFunction(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p where type(p) = :t or type(p.employer) = Company")
	junction := stmt.Query.Where.(*sqm.Junction)
	lhs := junction.LHS.(*sqm.Comparison)
	assert.IsType(t, &sqm.EntityTypeOf{}, lhs.LHS)
	rhs := junction.RHS.(*sqm.Comparison)
	of := rhs.LHS.(*sqm.EntityTypeOf)
	assert.Equal(t, "employer", of.Ref.(*sqm.SingularAttributeRef).Attribute.Name)

	stmt, _ = mustCompile(t, "select p from Person p where type(:x) = Employee")
	cmp := stmt.Query.Where.(*sqm.Comparison)
	assert.IsType(t, &sqm.ParameterizedEntityType{}, cmp.LHS)

	err := compileError(t, "select type(p.name) from Person p", false)
	assert.EqualError(t, err, `type() requires an entity-valued path but "p.name" is not one`)
}

func TestNewOutsideSelect(t *testing.T) {
	err := compileError(t, "select p from Person p where new list(p.id) is null", false)
	assert.EqualError(t, err, "dynamic instantiation is only allowed in the select clause")
}
