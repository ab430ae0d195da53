package semantic_test

import (
	"strings"
	"testing"

	"github.com/brimdata/sqm/compiler/semantic"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

var formatTests = []struct {
	query    string
	expected string
}{
	{
		query: "select p from Person p",
		expected: `
select statement
  from
    space
      root Person p#1
  select
    p#1 : Person
`,
	},
	{
		query: "select p.employer.name as n from Person p where p.age > :min order by n",
		expected: `
select statement
  from
    space
      root Person p#1
      inner join implicit p#1.employer <gen:0>#2
  select
    <gen:0>#2.name as n : string
  where
    (p#1.age > :min)
  order by
    n asc
parameters
  :min : integer
`,
	},
	{
		query: "select distinct ph.number from Person p left join fetch p.phones ph where p.id in (:ids)",
		expected: `
select statement
  from
    space
      root Person p#1
      left join fetch p#1.phones ph#2
  select distinct
    ph#2.number : string
  where
    p#1.id in (:ids)
parameters
  :ids : long multi-valued
`,
	},
	{
		query: "update Person set name = ?1 where id = ?2",
		expected: `
update
  root Person <gen:0>#1
  set
    <gen:0>#1.name = ?1
  where
    (<gen:0>#1.id = ?2)
parameters
  ?1 : string
  ?2 : long
`,
	},
	{
		query: "insert into Person (id, name) select -c.id, c.name from Company c",
		expected: `
insert into Person (id, name)
  root Person <gen:0>#1
  from
    space
      root Company c#2
  select
    -c#2.id : long
    c#2.name : string
`,
	},
	{
		query: "delete from Person p where p.tags is empty",
		expected: `
delete
  root Person p#1
  where
    p#1.tags is empty
`,
	},
}

func TestFormat(t *testing.T) {
	for _, c := range formatTests {
		t.Run(c.query, func(t *testing.T) {
			stmt, _, err := compile(t, c.query, semantic.Options{})
			require.NoError(t, err)
			expected := strings.TrimPrefix(c.expected, "\n")
			actual := sqm.Format(stmt) + "\n"
			if expected != actual {
				diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
					A:        difflib.SplitLines(expected),
					B:        difflib.SplitLines(actual),
					FromFile: "expected",
					ToFile:   "actual",
					Context:  2,
				})
				t.Fatalf("format mismatch:\n%s", diff)
			}
		})
	}
}
