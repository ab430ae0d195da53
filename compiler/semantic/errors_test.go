package semantic

import (
	"testing"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	names := []string{"Person", "Phone", "Company", "Employee", "Cat", "Dog"}
	assert.Equal(t, []string{"Person"}, suggest("persn", names))
	assert.Equal(t, []string{"Dog", "Cat"}, suggest("Cog", names))
	assert.Equal(t, []string{"Company"}, suggest("Compnay", names))
	assert.Empty(t, suggest("Warehouse", names))
}

func TestErrorLocations(t *testing.T) {
	err := semanticErrorf(&ast.ID{Name: "x", Loc: ast.NewLoc(3, 3)}, "bad %s", "x")
	assert.Equal(t, "bad x", err.Error())
	assert.Equal(t, 3, err.Pos())
	assert.Equal(t, -1, pathError(nil, "a.b").Pos())
	assert.Equal(t, "a.b", pathError(nil, "a.b").Text)
}

func TestViolationNames(t *testing.T) {
	assert.Equal(t, "limit/offset", LimitOffset.String())
	assert.Equal(t, "collection function", CollectionFunction.String())
	assert.Equal(t, "ViolationType(99)", ViolationType(99).String())
	err := &StrictComplianceError{Type: ImplicitSelect, Msg: "query has no select clause"}
	assert.Equal(t, "strict compliance violation (implicit select): query has no select clause", err.Error())
}
