package metamodel_test

import (
	"testing"

	"github.com/brimdata/sqm/metamodel"
	"github.com/stretchr/testify/assert"
)

func TestArithmeticResultType(t *testing.T) {
	m := loadModel(t)
	basic := m.ResolveBasicType
	cases := []struct {
		lhs, rhs metamodel.HostType
		op       metamodel.ArithmeticOperator
		expected metamodel.HostType
	}{
		{metamodel.HostInteger, metamodel.HostInteger, metamodel.Add, metamodel.HostInteger},
		{metamodel.HostInteger, metamodel.HostLong, metamodel.Add, metamodel.HostLong},
		{metamodel.HostLong, metamodel.HostFloat, metamodel.Multiply, metamodel.HostFloat},
		{metamodel.HostBigDecimal, metamodel.HostDouble, metamodel.Subtract, metamodel.HostDouble},
		{metamodel.HostBigInteger, metamodel.HostBigDecimal, metamodel.Add, metamodel.HostBigDecimal},
		{metamodel.HostShort, metamodel.HostShort, metamodel.Add, metamodel.HostInteger},
		{metamodel.HostByte, metamodel.HostShort, metamodel.Modulo, metamodel.HostInteger},
		{metamodel.HostInteger, metamodel.HostInteger, metamodel.Divide, metamodel.HostNumber},
		{metamodel.HostDouble, metamodel.HostDouble, metamodel.Divide, metamodel.HostNumber},
	}
	for _, c := range cases {
		t.Run(c.lhs.String()+c.op.String()+c.rhs.String(), func(t *testing.T) {
			typ := m.ResolveArithmeticResultType(basic(c.lhs), basic(c.rhs), c.op)
			assert.Equal(t, c.expected, typ.Host)
		})
	}
}

func TestArithmeticResultTypeUnknownOperand(t *testing.T) {
	m := loadModel(t)
	long := m.ResolveBasicType(metamodel.HostLong)
	assert.Same(t, long, m.ResolveArithmeticResultType(nil, long, metamodel.Add))
	assert.Nil(t, m.ResolveArithmeticResultType(nil, nil, metamodel.Add))
}

func TestSumResultType(t *testing.T) {
	m := loadModel(t)
	sum := func(h metamodel.HostType) metamodel.HostType {
		return m.ResolveSumResultType(m.ResolveBasicType(h)).Host
	}
	assert.Equal(t, metamodel.HostLong, sum(metamodel.HostShort))
	assert.Equal(t, metamodel.HostLong, sum(metamodel.HostInteger))
	assert.Equal(t, metamodel.HostDouble, sum(metamodel.HostFloat))
	assert.Equal(t, metamodel.HostBigDecimal, sum(metamodel.HostBigDecimal))
	assert.Equal(t, metamodel.HostBigInteger, sum(metamodel.HostBigInteger))
}

func TestUnaryResultType(t *testing.T) {
	m := loadModel(t)
	assert.Equal(t, metamodel.HostInteger, metamodel.UnaryResultType(m.ResolveBasicType(metamodel.HostShort), m.ResolveBasicType).Host)
	assert.Equal(t, metamodel.HostLong, metamodel.UnaryResultType(m.ResolveBasicType(metamodel.HostLong), m.ResolveBasicType).Host)
}
