package semantic_test

import (
	"errors"
	"testing"

	"github.com/brimdata/sqm/compiler/parser"
	"github.com/brimdata/sqm/compiler/semantic"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadModel(t *testing.T) *metamodel.Static {
	t.Helper()
	m, err := metamodel.LoadFile("testdata/model.yaml")
	require.NoError(t, err)
	return m
}

func compile(t *testing.T, query string, opts semantic.Options) (sqm.Statement, *semantic.Context, error) {
	t.Helper()
	p, err := parser.ParseQuery(query)
	require.NoError(t, err, "query: %q", query)
	ctx := semantic.NewContext(loadModel(t), opts)
	stmt, err := semantic.Analyze(p.Parsed(), ctx)
	return stmt, ctx, err
}

func mustCompile(t *testing.T, query string) (*sqm.SelectStatement, *semantic.Context) {
	t.Helper()
	stmt, ctx, err := compile(t, query, semantic.Options{})
	require.NoError(t, err, "query: %q", query)
	sel, ok := stmt.(*sqm.SelectStatement)
	require.True(t, ok, "query: %q", query)
	return sel, ctx
}

func compileError(t *testing.T, query string, strict bool) error {
	t.Helper()
	_, _, err := compile(t, query, semantic.Options{Strict: strict})
	require.Error(t, err, "query: %q", query)
	return err
}

func selections(stmt *sqm.SelectStatement) []sqm.Expr {
	var out []sqm.Expr
	for _, s := range stmt.Query.Select.Selections {
		out = append(out, s.Expr)
	}
	return out
}

func TestImplicitJoinReuse(t *testing.T) {
	stmt, ctx := mustCompile(t, "select p.employer.name, p.employer.id from Person p where p.employer.name like 'a%'")
	sels := selections(stmt)
	name := sels[0].(*sqm.SingularAttributeRef)
	id := sels[1].(*sqm.SingularAttributeRef)
	join := name.Container.(*sqm.EntityRef).From
	assert.Same(t, join, id.Container.(*sqm.EntityRef).From)
	assert.True(t, join.Implicit)
	assert.Equal(t, "<gen:0>", join.Alias)
	assert.Equal(t, sqm.Inner, join.JoinType)
	assert.Equal(t, "Company", join.Entity.Name)
	space := stmt.Query.From.Spaces[0]
	require.Len(t, space.Joins, 1)
	assert.Same(t, join, space.Joins[0])
	assert.Len(t, ctx.FromElements(), 2)
	assert.Same(t, join, ctx.FromElement(join.ID))
	like := stmt.Query.Where.(*sqm.Like)
	assert.Same(t, join, like.Expr.(*sqm.SingularAttributeRef).Source())
}

func TestExplicitJoinReusedByPath(t *testing.T) {
	stmt, ctx := mustCompile(t, "select e.name, p.employer.id from Person p join p.employer e")
	sels := selections(stmt)
	explicit := sels[0].(*sqm.SingularAttributeRef).Source()
	assert.False(t, explicit.Implicit)
	assert.Equal(t, "e", explicit.Alias)
	assert.Same(t, explicit, sels[1].(*sqm.SingularAttributeRef).Source())
	assert.Len(t, ctx.FromElements(), 2)
}

func TestDistinctAttributesJoinSeparately(t *testing.T) {
	stmt, ctx := mustCompile(t, "select p.employer.name, p.mate.name from Person p")
	sels := selections(stmt)
	employer := sels[0].(*sqm.SingularAttributeRef).Source()
	mate := sels[1].(*sqm.SingularAttributeRef).Source()
	assert.NotSame(t, employer, mate)
	assert.Equal(t, "Person", mate.Entity.Name)
	assert.Len(t, ctx.FromElements(), 3)
}

func TestEmbeddableAttribute(t *testing.T) {
	stmt, ctx := mustCompile(t, "select p.address.postal.code from Person p")
	code := selections(stmt)[0].(*sqm.SingularAttributeRef)
	assert.Equal(t, "code", code.Attribute.Name)
	postal := code.Container.(*sqm.SingularAttributeRef)
	assert.Equal(t, "postal", postal.Attribute.Name)
	assert.Same(t, stmt.Query.From.Spaces[0].Root, code.Source())
	assert.Len(t, ctx.FromElements(), 1)
	assert.Equal(t, "string", code.Type().TypeName())
}

func TestTwoSpacesOfOneEntity(t *testing.T) {
	stmt, _ := mustCompile(t, "select p1, p2 from Person p1, Person p2 where p1.mate = p2")
	spaces := stmt.Query.From.Spaces
	require.Len(t, spaces, 2)
	r1, r2 := spaces[0].Root, spaces[1].Root
	assert.NotSame(t, r1, r2)
	assert.Same(t, r1.Entity, r2.Entity)
	assert.Equal(t, 1, r1.ID)
	assert.Equal(t, 2, r2.ID)
	sels := selections(stmt)
	assert.Same(t, r1, sels[0].(*sqm.EntityRef).From)
	assert.Same(t, r2, sels[1].(*sqm.EntityRef).From)
}

func TestRootSelection(t *testing.T) {
	stmt, ctx := mustCompile(t, "select p from Person p")
	sels := selections(stmt)
	require.Len(t, sels, 1)
	root := stmt.Query.From.Spaces[0].Root
	assert.Equal(t, sqm.Root, root.Kind)
	assert.Equal(t, "p", root.Alias)
	assert.False(t, root.ImplicitAlias)
	assert.Same(t, root, sels[0].(*sqm.EntityRef).From)
	assert.Equal(t, "Person", sels[0].Type().TypeName())
	assert.Equal(t, []*sqm.FromElement{root}, ctx.FromElements())
	assert.Empty(t, stmt.Params())
	assert.NotEmpty(t, ctx.ID().String())
}

func TestAliasesIgnoreCase(t *testing.T) {
	stmt, _ := mustCompile(t, "select P.name from Person p")
	assert.Same(t, stmt.Query.From.Spaces[0].Root, selections(stmt)[0].(*sqm.SingularAttributeRef).Source())
}

func TestAliasCollision(t *testing.T) {
	for _, query := range []string{
		"select p from Person p, Person p",
		"select p from Person p join p.phones P",
		"select p.name as p from Person p",
		"select p.name as n, p.age as n from Person p",
		"select p from Person p, Company c where exists (select c from Company c join c.employees c)",
		"select ph.number as ph from Person p join p.phones ph",
		"select p as ph from Person p join p.phones ph",
	} {
		err := compileError(t, query, false)
		var collision *semantic.AliasCollisionError
		assert.True(t, errors.As(err, &collision), "query %q: %s", query, err)
	}
	for _, query := range []string{
		"select p as p from Person p",
		"select p.name as n, p.name as n from Person p",
		"select p from Person p where exists (select p from Person p)",
		"select ph as ph from Person p join p.phones ph",
		"select f as f from Person p join p.friends f",
		"select t as t from Person p join p.tags t",
		"select e as e from Person p join p.employer e",
	} {
		_, _, err := compile(t, query, semantic.Options{})
		assert.NoError(t, err, "query: %q", query)
	}
}

func TestGeneratedAliases(t *testing.T) {
	stmt, _ := mustCompile(t, "from Person")
	root := stmt.Query.From.Spaces[0].Root
	assert.True(t, root.ImplicitAlias)
	assert.Equal(t, "<gen:0>", root.Alias)
	assert.True(t, stmt.Query.Select.Inferred)
	assert.Same(t, root, selections(stmt)[0].(*sqm.EntityRef).From)
}

func TestUnqualifiedAttributeOfSoleRoot(t *testing.T) {
	stmt, _ := mustCompile(t, "select name from Person where age > 1")
	name := selections(stmt)[0].(*sqm.SingularAttributeRef)
	assert.Same(t, stmt.Query.From.Spaces[0].Root, name.Source())
	err := compileError(t, "select name from Person, Company", false)
	assert.EqualError(t, err, `could not resolve path "name"`)
}

func TestResultVariableInOrderBy(t *testing.T) {
	stmt, _ := mustCompile(t, "select p.name as n from Person p order by n desc nulls first")
	require.Len(t, stmt.Query.OrderBy, 1)
	order := stmt.Query.OrderBy[0]
	ref := order.Expr.(*sqm.SelectionRef)
	assert.Same(t, stmt.Query.Select.Selections[0], ref.Selection)
	assert.Equal(t, sqm.Descending, order.Order)
	assert.Equal(t, sqm.NullsFirst, order.Nulls)
	err := compileError(t, "select p.name as n from Person p where n = 'x'", false)
	assert.EqualError(t, err, `result variable "n" cannot be referenced here`)
}

func TestResultVariableNotVisibleInSubquery(t *testing.T) {
	err := compileError(t, "select p.name as n from Person p where exists (select c from Company c order by n)", false)
	assert.EqualError(t, err, `could not resolve path "n"`)
	// An identification variable of the outer query stays visible.
	mustCompile(t, "select p as p from Person p where exists (select c from Company c order by p.name)")
}

func TestArithmetic(t *testing.T) {
	stmt, _ := mustCompile(t, "select p.age + p.height, p.age * 1.5, p.salary - 1, p.age / 2, -p.height, p.age + :x from Person p")
	sels := selections(stmt)
	sum := sels[0].(*sqm.BinaryArithmetic)
	root := stmt.Query.From.Spaces[0].Root
	assert.Same(t, root, sum.LHS.(*sqm.SingularAttributeRef).Source())
	assert.Same(t, root, sum.RHS.(*sqm.SingularAttributeRef).Source())
	assert.Equal(t, metamodel.Add, sum.Op)
	var types []string
	for _, e := range sels {
		types = append(types, e.Type().TypeName())
	}
	assert.Equal(t, []string{"integer", "double", "big_decimal", "number", "integer", "integer"}, types)
	assert.Equal(t, "integer", stmt.Params()[0].AnticipatedType.TypeName())

	stmt, _ = mustCompile(t, "select :a / :b from Person p")
	quotient := selections(stmt)[0]
	require.NotNil(t, quotient.Type())
	assert.Equal(t, "number", quotient.Type().TypeName())
}

func TestArithmeticRequiresNumbers(t *testing.T) {
	err := compileError(t, "select p.name + 1 from Person p", false)
	assert.EqualError(t, err, "arithmetic operand of type string is not numeric")
}

func TestParameters(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p where p.name = :name and p.age > :age or p.nickName = :name")
	params := stmt.Params()
	require.Len(t, params, 2)
	assert.Equal(t, "name", params[0].Name)
	assert.Equal(t, "age", params[1].Name)
	assert.Equal(t, "string", params[0].AnticipatedType.TypeName())
	assert.Equal(t, "integer", params[1].AnticipatedType.TypeName())

	stmt, _ = mustCompile(t, "select p from Person p where p.age between ?2 and ?1")
	params = stmt.Params()
	require.Len(t, params, 2)
	assert.Equal(t, 1, params[0].Position)
	assert.Equal(t, 2, params[1].Position)
}

func TestParameterErrors(t *testing.T) {
	cases := []struct {
		query string
		msg   string
	}{
		{"select p from Person p where p.age = ?", "unlabeled ordinal parameter '?' is not supported; use ?1, ?2, ..."},
		{"select p from Person p where p.age = ?0", "ordinal parameter ?0 is invalid: positions start at 1"},
		{"select p from Person p where p.age = ?1 or p.age = ?3", "ordinal parameters are not contiguous: ?2 is missing"},
		{"select p from Person p where p.age = :a or p.age = ?1", "cannot mix ordinal parameter ?1 with named parameters"},
		{"select p from Person p where p.age = ?1 or p.age = :a", "cannot mix named parameter :a with ordinal parameters"},
	}
	for _, c := range cases {
		err := compileError(t, c.query, false)
		assert.EqualError(t, err, c.msg, "query: %q", c.query)
	}
}

func TestInListParameters(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p where p.id in (:ids)")
	params := stmt.Params()
	require.Len(t, params, 1)
	assert.True(t, params[0].AllowMultiValued)
	assert.Equal(t, "long", params[0].AnticipatedType.TypeName())

	stmt, _ = mustCompile(t, "select p from Person p where p.id in (:a, :b)")
	for _, p := range stmt.Params() {
		assert.False(t, p.AllowMultiValued, p.Name)
		assert.Equal(t, "long", p.AnticipatedType.TypeName())
	}
}

func TestMultiValuedFunctionArgument(t *testing.T) {
	stmt, _ := mustCompile(t, "select coalesce(p.name, :names) from Person p")
	assert.True(t, stmt.Params()[0].AllowMultiValued)

	stmt, _ = mustCompile(t, "select nullif(p.name, :name) from Person p")
	assert.False(t, stmt.Params()[0].AllowMultiValued)

	out, _, err := compile(t, "select concat(p.name, :names) from Person p", semantic.Options{Strict: true})
	require.NoError(t, err)
	assert.False(t, out.(*sqm.SelectStatement).Params()[0].AllowMultiValued)
}

func TestPathFallbacks(t *testing.T) {
	stmt, _ := mustCompile(t, "select com.acme.Status.ACTIVE, com.acme.Limits.MAX_AGE from Person p where type(p) = Employee")
	sels := selections(stmt)
	enum := sels[0].(*sqm.EnumConstant)
	assert.Equal(t, "ACTIVE", enum.Constant.Name)
	field := sels[1].(*sqm.FieldConstant)
	assert.Equal(t, "integer", field.Type().TypeName())
	cmp := stmt.Query.Where.(*sqm.Comparison)
	assert.IsType(t, &sqm.EntityTypeOf{}, cmp.LHS)
	assert.Equal(t, "Employee", cmp.RHS.(*sqm.EntityTypeLiteral).Entity.Name)

	err := compileError(t, "select p.nope from Person p", false)
	var semErr *semantic.SemanticError
	require.True(t, errors.As(err, &semErr))
	assert.Equal(t, "p.nope", semErr.Text)
	assert.EqualError(t, err, `could not resolve path "p.nope"`)
}

func TestUnknownEntity(t *testing.T) {
	err := compileError(t, "select p from Persn p", false)
	var unknown *semantic.UnknownEntityError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Persn", unknown.Name)
	assert.Equal(t, []string{"Person"}, unknown.Suggestions)
	assert.EqualError(t, err, `unknown entity "Persn" (did you mean Person?)`)
	var semErr *semantic.SemanticError
	assert.True(t, errors.As(err, &semErr))
	assert.Equal(t, 14, semErr.Pos())
}

func TestNotYetImplemented(t *testing.T) {
	for _, query := range []string{
		"select p.extras from Person p",
		"select p from Person p join p.extras x",
	} {
		err := compileError(t, query, false)
		var nyi *semantic.NotYetImplementedError
		assert.True(t, errors.As(err, &nyi), "query %q: %s", query, err)
	}
}

func TestContextUsedOnce(t *testing.T) {
	p, err := parser.ParseQuery("select p from Person p")
	require.NoError(t, err)
	ctx := semantic.NewContext(loadModel(t), semantic.Options{})
	_, err = semantic.Analyze(p.Parsed(), ctx)
	require.NoError(t, err)
	_, err = semantic.Analyze(p.Parsed(), ctx)
	assert.Error(t, err)
}

func TestJoinScoping(t *testing.T) {
	err := compileError(t, "select p from Person p, Company c join c.employees e on p.name = 'x'", false)
	assert.EqualError(t, err, "join predicate refers to p of another from clause space")

	err = compileError(t, "select p from Person p, Company c join p.phones ph", false)
	assert.EqualError(t, err, "join target must be based on a from-element of its own space but p is not")

	stmt, _ := mustCompile(t, "select p from Person p where exists (select c from Company c join c.employees e on e = p)")
	exists := stmt.Query.Where.(*sqm.Exists)
	join := exists.Subquery.Query.From.Spaces[0].Joins[0]
	on := join.On.(*sqm.Comparison)
	assert.Same(t, stmt.Query.From.Spaces[0].Root, on.RHS.(*sqm.EntityRef).From)
}

func TestSubqueryPathsSeeOuterAliases(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p where p.age > (select avg(c.id) from Company c where c.name = p.employer.name)")
	cmp := stmt.Query.Where.(*sqm.Comparison)
	sub := cmp.RHS.(*sqm.Subquery)
	assert.Equal(t, "double", sub.Type().TypeName())
	// The implicit join of p.employer belongs to the outer space.
	outer := stmt.Query.From.Spaces[0]
	require.Len(t, outer.Joins, 1)
	assert.Equal(t, "employer", outer.Joins[0].Attribute.AttributeName())
	assert.Empty(t, sub.Query.From.Spaces[0].Joins)
}

func TestJoinKinds(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p left join fetch p.phones cross join Company c join Phone ph on ph.owner = p")
	space := stmt.Query.From.Spaces[0]
	require.Len(t, space.Joins, 3)
	phones, company, phone := space.Joins[0], space.Joins[1], space.Joins[2]
	assert.Equal(t, sqm.AttributeJoin, phones.Kind)
	assert.Equal(t, sqm.Left, phones.JoinType)
	assert.True(t, phones.Fetched)
	assert.True(t, phones.ImplicitAlias)
	assert.Equal(t, "Phone", phones.Entity.Name)
	assert.Equal(t, sqm.CrossJoin, company.Kind)
	assert.Equal(t, sqm.EntityJoin, phone.Kind)
	assert.NotNil(t, phone.On)

	err := compileError(t, "select p from Person p right join p.phones ph", false)
	assert.EqualError(t, err, "right join is not supported")
	err = compileError(t, "select p from Person p join p.name n", false)
	assert.EqualError(t, err, `basic attribute "name" cannot be joined`)
}

func TestOuterJoin(t *testing.T) {
	for _, query := range []string{
		"select p from Person p outer join p.employer e",
		"select p from Person p left outer join p.employer e",
	} {
		stmt, _ := mustCompile(t, query)
		joins := stmt.Query.From.Spaces[0].Joins
		require.Len(t, joins, 1, "query: %q", query)
		assert.Equal(t, sqm.Left, joins[0].JoinType, "query: %q", query)
	}
}

func TestDynamicInstantiation(t *testing.T) {
	stmt, _ := mustCompile(t, "select new com.acme.PersonSummary(p.name, new list(p.age, p.id) as l) from Person p")
	inst := selections(stmt)[0].(*sqm.DynamicInstantiation)
	assert.Equal(t, sqm.ClassTarget, inst.Target)
	assert.Equal(t, "com.acme.PersonSummary", inst.Class.Name)
	require.Len(t, inst.Args, 2)
	nested := inst.Args[1].Expr.(*sqm.DynamicInstantiation)
	assert.Equal(t, sqm.ListTarget, nested.Target)
	assert.Equal(t, "l", inst.Args[1].Alias)

	err := compileError(t, "select new com.acme.Nothing(p.name) from Person p", false)
	var semErr *semantic.SemanticError
	assert.True(t, errors.As(err, &semErr))
}

func TestLimitOffset(t *testing.T) {
	stmt, _ := mustCompile(t, "select p from Person p order by p.id limit ?1 offset 5")
	assert.Equal(t, "integer", stmt.Params()[0].AnticipatedType.TypeName())
	assert.NotNil(t, stmt.Query.Offset)

	err := compileError(t, "select p from Person p where exists (select c from Company c limit 1)", false)
	assert.EqualError(t, err, "limit or offset in a subquery requires an order by")
}

func TestDMLStatements(t *testing.T) {
	stmt, _, err := compile(t, "update versioned Person set name = ?1, age = age + 1 where id = ?2", semantic.Options{})
	require.NoError(t, err)
	update := stmt.(*sqm.UpdateStatement)
	assert.True(t, update.Versioned)
	require.Len(t, update.Set, 2)
	assert.Equal(t, "name", update.Set[0].Target.Attribute.Name)
	assert.Same(t, update.Root, update.Set[0].Target.Source())
	params := update.Params()
	require.Len(t, params, 2)
	assert.Equal(t, "string", params[0].AnticipatedType.TypeName())
	assert.Equal(t, "long", params[1].AnticipatedType.TypeName())

	stmt, _, err = compile(t, "delete from Person p where p.age < 0", semantic.Options{})
	require.NoError(t, err)
	del := stmt.(*sqm.DeleteStatement)
	assert.Equal(t, "p", del.Root.Alias)
	assert.NotNil(t, del.Where)

	stmt, _, err = compile(t, "insert into Person (id, name) select c.id, c.name from Company c", semantic.Options{})
	require.NoError(t, err)
	insert := stmt.(*sqm.InsertSelectStatement)
	assert.Equal(t, "Person", insert.Target.Entity.Name)
	require.Len(t, insert.Fields, 2)
	assert.Equal(t, "name", insert.Fields[1].Attribute.Name)

	err = compileError(t, "insert into Person (id) select c.id, c.name from Company c", false)
	assert.EqualError(t, err, "insert lists 1 fields but selects 2 values")
	err = compileError(t, "update Person p set p.employer.name = 'x'", false)
	assert.EqualError(t, err, `"p.employer.name" is not a singular attribute of Person`)
}
