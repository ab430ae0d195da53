package semantic_test

import (
	"errors"
	"testing"

	"github.com/brimdata/sqm/compiler/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictCompliance(t *testing.T) {
	cases := []struct {
		query     string
		violation semantic.ViolationType
	}{
		{"from Person", semantic.ImplicitSelect},
		{"select p from Person p order by p.id limit 10", semantic.LimitOffset},
		{"select p from Person p offset 10", semantic.LimitOffset},
		{"select p from Person p where exists (select ph from Phone ph order by ph.id)", semantic.SubqueryOrderBy},
		{"select a from com.acme.Animal a", semantic.UnmappedPolymorphism},
		{"select p from Person p join fetch p.phones ph", semantic.AliasedFetchJoin},
		{"select p from Person p join p.phones count", semantic.ReservedWordAsAlias},
		{"select p.name as value from Person p", semantic.ReservedWordAsAlias},
		{"select soundex(p.name) from Person p", semantic.FunctionCall},
		{"select maxelement(p.nickNames) from Person p", semantic.CollectionFunction},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			_, _, err := compile(t, c.query, semantic.Options{})
			require.NoError(t, err)
			_, _, err = compile(t, c.query, semantic.Options{Strict: true})
			var strict *semantic.StrictComplianceError
			require.True(t, errors.As(err, &strict), "error: %v", err)
			assert.Equal(t, c.violation, strict.Type)
		})
	}
}

func TestStrictAllowsStandardQueries(t *testing.T) {
	for _, query := range []string{
		"select p from Person p",
		"select p.name from Person p join p.phones ph where key(ph) = 'home' order by p.name",
		"select p from Person p join fetch p.phones",
		"select count(p), function('soundex', p.name) from Person p group by p.name",
		"select p from Person p where exists (select ph from Phone ph where ph.owner = p)",
		"select upper(p.name), size(p.tags) from Person p where p.tags is not empty",
	} {
		_, _, err := compile(t, query, semantic.Options{Strict: true})
		assert.NoError(t, err, "query: %q", query)
	}
}

func TestStrictErrorMessage(t *testing.T) {
	err := compileError(t, "select soundex(p.name) from Person p", true)
	assert.EqualError(t, err, "strict compliance violation (function call): soundex() is not a standard function; use function('soundex', ...)")
}
