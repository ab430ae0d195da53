package compile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/brimdata/sqm/cmd/sqm/root"
	"github.com/brimdata/sqm/compiler/parser"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/brimdata/sqm/cmd/sqm/compile"
)

const model = "../../../compiler/semantic/testdata/model.yaml"

// run executes the command with every compile flag given explicitly since
// flag values persist across executions of the same command tree.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root.Sqm.SetOut(&stdout)
	root.Sqm.SetErr(&stderr)
	root.Sqm.SetArgs(append([]string{"compile", "--model", model, "--dump=false", "--stats=false", "--source=", "--log-file="}, args...))
	err := root.Sqm.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCompileQuery(t *testing.T) {
	stdout, _, err := run(t, "-c", "select p from Person p")
	require.NoError(t, err)
	expected := `select statement
  from
    space
      root Person p#1
  select
    p#1 : Person
`
	assert.Equal(t, expected, stdout)
}

func TestCompileFiles(t *testing.T) {
	hql := writeFile(t, "q.hql", "delete from Person p where p.age < 0\n")
	p, err := parser.ParseQuery("select c.name from Company c")
	require.NoError(t, err)
	b, err := json.Marshal(p)
	require.NoError(t, err)
	tree := writeFile(t, "q.json", string(b))
	stdout, _, err := run(t, "-c", "", hql, tree)
	require.NoError(t, err)
	assert.Contains(t, stdout, "-- "+hql+"\ndelete\n")
	assert.Contains(t, stdout, "-- "+tree+"\nselect statement\n")
}

func TestCompileJSONWithSource(t *testing.T) {
	query := "select p from Persn p"
	p, err := parser.ParseQuery(query)
	require.NoError(t, err)
	b, err := json.Marshal(p)
	require.NoError(t, err)
	tree := writeFile(t, "bad.json", string(b))
	source := writeFile(t, "bad.hql", query)
	_, _, err = run(t, "-c", "", "--source", source, tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at line 1, column 15")

	_, _, err = run(t, "-c", "select p from Person p", "--source", source)
	assert.EqualError(t, err, "--source requires exactly one JSON syntax tree")
}

func TestCompileDumpAndStats(t *testing.T) {
	stdout, stderr, err := run(t, "-c", "select p.employer.name from Person p", "--dump", "--stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "&sqm.SelectStatement{")
	assert.Contains(t, stderr, `sqm_semantic_statements_total{kind="select"} 1`)
	assert.Contains(t, stderr, "sqm_semantic_implicit_joins_total 1")
}

func TestCompileLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqm.log")
	_, _, err := run(t, "-c", "from Person", "--log-file", path)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"statement compiled"`)
	assert.Contains(t, string(b), `"level":"warn"`)
}

func TestCompileNoQuery(t *testing.T) {
	_, _, err := run(t, "-c", "")
	assert.EqualError(t, err, "no query specified")
}

func TestCompileNoModel(t *testing.T) {
	var stdout bytes.Buffer
	root.Sqm.SetOut(&stdout)
	root.Sqm.SetArgs([]string{"compile", "--model=", "-c", "select p from Person p"})
	assert.EqualError(t, root.Sqm.Execute(), "no model specified (use --model)")
}
