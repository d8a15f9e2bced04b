package file_linker

// DeclarationScope is the part of the source tree that contains a partial
// declaration. C identifies a scope into which constants can be hoisted and
// must be comparable so it can key the emit scope cache.
type DeclarationScope[C comparable, E any] interface {
	// GetConstantScopeRef returns the scope that constants shared by
	// declarations importing ngImport can be emitted into. It reports false
	// when no such scope exists, in which case every declaration gets its own
	// immediately invoked wrapper.
	GetConstantScopeRef(ngImport E) (C, bool)
}
