package domain

// SourceInput is one source file handed to the foreign compiler.
type SourceInput struct {
	Unit   UnitSource
	Source []byte
}

// CompileOutput pairs an input with the declaration the compiler produced for it.
type CompileOutput struct {
	Input       *SourceInput
	Declaration *Declaration
}

// TypeData is one class handed to the type model builder.
type TypeData struct {
	Class *CompiledClass
	// LastModified is the modification time of the owning unit's source.
	LastModified int64
	// Generated is set for classes whose unit came from a generator.
	Generated bool
}
