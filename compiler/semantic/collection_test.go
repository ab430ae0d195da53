package semantic_test

import (
	"testing"

	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarePluralInSelectIsJoined(t *testing.T) {
	stmt, ctx := mustCompile(t, "select p.phones, p.nickNames, p.addresses from Person p")
	sels := selections(stmt)
	phone := sels[0].(*sqm.EntityElementRef)
	require.NotNil(t, phone.From)
	assert.True(t, phone.From.Implicit)
	assert.Same(t, phone.From, phone.Collection.Exported)
	assert.Equal(t, "Phone", sels[0].Type().TypeName())
	nick := sels[1].(*sqm.BasicElementRef)
	assert.Equal(t, "string", nick.Type().TypeName())
	addr := sels[2].(*sqm.EmbeddableElementRef)
	assert.Equal(t, "Address", addr.Type().TypeName())
	assert.Len(t, ctx.FromElements(), 4)
}

func TestCollectionJoinAlias(t *testing.T) {
	stmt, _ := mustCompile(t, "select ph, ph.number, key(ph), value(ph).number, entry(ph) from Person p join p.phones ph")
	join := stmt.Query.From.Spaces[0].Joins[0]
	sels := selections(stmt)
	elem := sels[0].(*sqm.EntityElementRef)
	assert.Same(t, join, elem.From)
	number := sels[1].(*sqm.SingularAttributeRef)
	assert.Same(t, join, number.Source())
	key := sels[2].(*sqm.BasicIndexRef)
	assert.Same(t, join, key.From)
	assert.Equal(t, "string", key.Type().TypeName())
	assert.Same(t, join, sels[3].(*sqm.SingularAttributeRef).Source())
	entry := sels[4].(*sqm.MapEntryRef)
	assert.Same(t, join, entry.From)
	// Nothing but the explicit join.
	assert.Len(t, stmt.Query.From.Spaces[0].Joins, 1)
}

func TestImplicitCollectionJoinReuse(t *testing.T) {
	stmt, _ := mustCompile(t, "select p.phones.number, p.phones.kind from Person p")
	sels := selections(stmt)
	number := sels[0].(*sqm.SingularAttributeRef)
	kind := sels[1].(*sqm.SingularAttributeRef)
	assert.Same(t, number.Source(), kind.Source())
	assert.Len(t, stmt.Query.From.Spaces[0].Joins, 1)
}

func TestIndexAccess(t *testing.T) {
	stmt, _ := mustCompile(t, "select p.nickNames[0], p.nickNames[1], ph['home'].number from Person p join p.phones ph")
	space := stmt.Query.From.Spaces[0]
	// The explicit join and one join per index access.
	require.Len(t, space.Joins, 4)
	sels := selections(stmt)
	first := sels[0].(*sqm.BasicElementRef)
	second := sels[1].(*sqm.BasicElementRef)
	assert.NotSame(t, first.From, second.From)
	on := first.From.On.(*sqm.Comparison)
	assert.IsType(t, &sqm.BasicIndexRef{}, on.LHS)
	assert.Equal(t, "integer", on.RHS.Type().TypeName())
	home := sels[2].(*sqm.SingularAttributeRef)
	assert.Same(t, space.Joins[3], home.Source())

	err := compileError(t, "select p.tags[0] from Person p", false)
	assert.EqualError(t, err, `bag "tags" is not indexed`)
}

func TestCollectionFunctionRequirements(t *testing.T) {
	err := compileError(t, "select key(n) from Person p join p.nickNames n", false)
	assert.EqualError(t, err, `key() requires a map but "nickNames" is a list`)
	err = compileError(t, "select index(t) from Person p join p.tags t", false)
	assert.EqualError(t, err, `index() requires a list but "tags" is a bag`)

	stmt, _ := mustCompile(t, "select index(n) from Person p join p.nickNames n")
	assert.IsType(t, &sqm.BasicIndexRef{}, selections(stmt)[0])

	stmt, _ = mustCompile(t, "select p from Person p where size(p.tags) > 2 or :tag member of p.tags")
	assert.Empty(t, stmt.Query.From.Spaces[0].Joins)
}

func TestCollectionFunctionDoesNotJoin(t *testing.T) {
	stmt, _ := mustCompile(t, "select maxindex(p.nickNames), minelement(p.tags) from Person p")
	sels := selections(stmt)
	maxIndex := sels[0].(*sqm.CollectionFunction)
	assert.Equal(t, "maxindex", maxIndex.Name)
	assert.Nil(t, maxIndex.Arg.(*sqm.BasicIndexRef).From)
	assert.Equal(t, "integer", maxIndex.Type().TypeName())
	assert.Empty(t, stmt.Query.From.Spaces[0].Joins)
}
