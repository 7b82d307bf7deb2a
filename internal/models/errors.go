package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds shared by the validator, registry, run list and generator.
// Callers match them with errors.Is.
var (
	ErrSchema          = errors.New("schema error")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrNotFound        = errors.New("run not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrDuplicateTag    = errors.New("duplicate tag")
	ErrTemplateExists  = errors.New("template already exists")
	ErrUnknownArgType  = errors.New("unknown argument type")
)

// SchemaError reports a malformed template, run or configuration document.
// It matches ErrSchema.
type SchemaError struct {
	Subject  string // "template", "run" or "config"
	Name     string // template name or run tag, when known
	Problems []string
}

// NewSchemaError builds a SchemaError from a list of problems.
func NewSchemaError(subject, name string, problems ...string) *SchemaError {
	return &SchemaError{Subject: subject, Name: name, Problems: problems}
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	b.WriteString(e.Subject)
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if len(e.Problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	return b.String()
}

// Is lets errors.Is(err, ErrSchema) match any SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
