package source

import "errors"

var (
	ErrEmptyName              = errors.New("variable name cannot be empty")
	ErrEmptyKey               = errors.New("key cannot be empty")
	ErrUnknownVariable        = errors.New("variable not declared")
	ErrUnknownKey             = errors.New("key not declared for variable")
	ErrConflictingDeclaration = errors.New("variable already declared with different metadata")
)
