package metamodel

// The rules in this file follow the result-type text of the query language
// standard.  They intentionally do not promote to a common supertype:
// short (and byte) widen to integer but long, big integer, big decimal,
// float and double are returned as they are.

// arithmeticOrder lists the host types that win a binary arithmetic
// operation, strongest first.
var arithmeticOrder = []HostType{
	HostDouble,
	HostFloat,
	HostBigDecimal,
	HostBigInteger,
	HostLong,
	HostInteger,
}

// ArithmeticResultType computes the type of "lhs op rhs".  Division always
// yields the numeric supertype since the semantics of division are not
// portable across databases.  Either operand may be nil when its type is
// not yet known.
func ArithmeticResultType(lhs, rhs *BasicType, op ArithmeticOperator, basic func(HostType) *BasicType) *BasicType {
	if op == Divide {
		return basic(HostNumber)
	}
	for _, h := range arithmeticOrder {
		if isHost(lhs, h) {
			return lhs
		}
		if isHost(rhs, h) {
			return rhs
		}
	}
	if isHost(lhs, HostShort) || isHost(lhs, HostByte) || isHost(rhs, HostShort) || isHost(rhs, HostByte) {
		return basic(HostInteger)
	}
	if lhs != nil {
		return lhs
	}
	return rhs
}

// UnaryResultType computes the type of a unary plus or minus.
func UnaryResultType(operand *BasicType, basic func(HostType) *BasicType) *BasicType {
	if isHost(operand, HostShort) || isHost(operand, HostByte) {
		return basic(HostInteger)
	}
	return operand
}

// SumResultType widens integral operands to long and floating point
// operands to double.  Big integers and big decimals are kept.
func SumResultType(operand *BasicType, basic func(HostType) *BasicType) *BasicType {
	if operand == nil {
		return nil
	}
	switch operand.Host {
	case HostByte, HostShort, HostInteger, HostLong:
		return basic(HostLong)
	case HostFloat, HostDouble:
		return basic(HostDouble)
	case HostBigInteger, HostBigDecimal:
		return operand
	}
	return operand
}

// CountResultType is the type of count() and count(*).
func CountResultType(basic func(HostType) *BasicType) *BasicType {
	return basic(HostLong)
}

// AvgResultType is the type of avg().
func AvgResultType(basic func(HostType) *BasicType) *BasicType {
	return basic(HostDouble)
}

func isHost(b *BasicType, h HostType) bool {
	return b != nil && b.Host == h
}
