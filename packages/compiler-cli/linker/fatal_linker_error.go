package linker

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// FatalLinkerError is raised when a partial declaration has a shape the linker
// cannot process. Node is the offending expression of the host AST.
type FatalLinkerError struct {
	Node    interface{}
	Message string
}

// NewFatalLinkerError creates a FatalLinkerError carrying a stack trace.
func NewFatalLinkerError(node interface{}, message string) error {
	return errors.WithStack(&FatalLinkerError{Node: node, Message: message})
}

// NewFatalLinkerErrorf is NewFatalLinkerError with formatting.
func NewFatalLinkerErrorf(node interface{}, format string, args ...interface{}) error {
	return errors.WithStack(&FatalLinkerError{Node: node, Message: fmt.Sprintf(format, args...)})
}

func (e *FatalLinkerError) Error() string {
	return e.Message
}

// ErrorNode returns the node the error is reported against.
func (e *FatalLinkerError) ErrorNode() interface{} {
	return e.Node
}

// UnknownDeclarationError is raised when a linker is requested for a function
// name that was never registered.
type UnknownDeclarationError struct {
	FunctionName string
}

func (e *UnknownDeclarationError) Error() string {
	return fmt.Sprintf("Unknown partial declaration function %s.", e.FunctionName)
}

// ErrorNode returns nil: the error is not tied to a node.
func (e *UnknownDeclarationError) ErrorNode() interface{} {
	return nil
}

// UnsupportedVersionError is raised when a declaration's version matches none
// of the ranges registered for its function.
type UnsupportedVersionError struct {
	FunctionName string
	Version      string
	Ranges       []string
	Node         interface{}
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf(
		"Unsupported partial declaration version %s for %s.\nValid version ranges are:\n - %s",
		e.Version, e.FunctionName, strings.Join(e.Ranges, "\n - "),
	)
}

func (e *UnsupportedVersionError) ErrorNode() interface{} {
	return e.Node
}

// MalformedCallError is raised when a declaration call does not have exactly
// one argument.
type MalformedCallError struct {
	FunctionName  string
	ArgumentCount int
	Node          interface{}
}

func (e *MalformedCallError) Error() string {
	return fmt.Sprintf(
		"Invalid function call: It should have only a single object literal argument, but contained %d.",
		e.ArgumentCount,
	)
}

func (e *MalformedCallError) ErrorNode() interface{} {
	return e.Node
}

type nodeError interface {
	error
	ErrorNode() interface{}
}

// ErrorNode returns the node a linker error was raised against, or nil.
func ErrorNode(err error) interface{} {
	var ne nodeError
	if errors.As(err, &ne) {
		return ne.ErrorNode()
	}
	return nil
}

// IsFatalLinkerError reports whether err is one of the call-scoped linker
// failures.
func IsFatalLinkerError(err error) bool {
	var ne nodeError
	return errors.As(err, &ne)
}
