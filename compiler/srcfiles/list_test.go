package srcfiles_test

import (
	"errors"
	"testing"

	"github.com/brimdata/sqm/compiler/srcfiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition(t *testing.T) {
	list := srcfiles.FromText("", "select p\nfrom Person p\n")
	assert.Equal(t, srcfiles.Position{Pos: 0, Line: 1, Column: 1}, list.Position(0))
	assert.Equal(t, srcfiles.Position{Pos: 14, Line: 2, Column: 6}, list.Position(14))
	assert.False(t, list.Position(-1).IsValid())
	assert.Equal(t, "select p", list.Line(3))
	assert.Equal(t, "from Person p", list.Line(14))
}

func TestLocate(t *testing.T) {
	list := srcfiles.FromText("q.hql", "select p from Persn p")
	assert.NoError(t, list.Error())
	cause := errors.New("unknown entity")
	list.Locate(cause, 14, 18)
	err := list.Error()
	require.Error(t, err)
	assert.Equal(t, "unknown entity in q.hql at line 1, column 15:\nselect p from Persn p\n              ~~~~~", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestPointError(t *testing.T) {
	list := srcfiles.FromText("", "select p from")
	list.AddError("unexpected end of input", 13, -1)
	list.AddError("no position", -1, -1)
	assert.Equal(t, "unexpected end of input at line 1, column 14:\nselect p from\n         === ^ ===\nno position", list.Error().Error())
}
