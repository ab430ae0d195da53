package metamodel

// Model is the read-only catalog consulted by semantic analysis.  Lookups
// are synchronous and free of side effects.
type Model interface {
	// ResolveEntity returns the entity named by an entity name or class
	// name or nil if there is no such entity.
	ResolveEntity(name string) *EntityType
	// ResolveAttribute returns the attribute of owner or nil.
	ResolveAttribute(owner ManagedType, name string) Attribute
	ResolveBasicType(host HostType) *BasicType
	ResolveArithmeticResultType(lhs, rhs *BasicType, op ArithmeticOperator) *BasicType
	ResolveSumResultType(operand *BasicType) *BasicType
	// ResolveCastTargetType returns nil when name is not a cast target.
	ResolveCastTargetType(name string) Type
	ClassByName(name string) (*Class, error)
}

// Lister is implemented by models that can enumerate their entity names.
// It is used to suggest alternatives for unknown entity names.
type Lister interface {
	EntityNames() []string
}
