package render3

import (
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
)

// R3PipeMetadata contains metadata for a pipe
type R3PipeMetadata struct {
	// Name of the pipe type
	Name string

	// An expression representing a reference to the pipe itself
	Type R3Reference

	// Name of the pipe as used in templates
	PipeName string

	// Whether the pipe is marked as pure
	Pure bool

	// Whether the pipe is standalone
	IsStandalone bool
}

// CompilePipeFromMetadata compiles a pipe definition from metadata
func CompilePipeFromMetadata(metadata R3PipeMetadata) R3CompiledExpression {
	definitionMapValues := []*output.LiteralMapEntry{
		// e.g. `name: 'myPipe'`
		output.NewLiteralMapEntry("name", output.Literal(metadata.PipeName), false),
		// e.g. `type: MyPipe`
		output.NewLiteralMapEntry("type", metadata.Type.Value, false),
		// e.g. `pure: true`
		output.NewLiteralMapEntry("pure", output.Literal(metadata.Pure), false),
	}

	// Only add standalone if it's false (true is the default)
	if !metadata.IsStandalone {
		definitionMapValues = append(definitionMapValues, output.NewLiteralMapEntry("standalone", output.Literal(false), false))
	}

	expression := output.NewInvokeFunctionExpr(
		output.ImportExpr(r3_identifiers.DefinePipe),
		[]output.OutputExpression{output.NewLiteralMapExpr(definitionMapValues)},
		true,
	)
	return R3CompiledExpression{Expression: expression, Statements: []output.OutputStatement{}}
}
