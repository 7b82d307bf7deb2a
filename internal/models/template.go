// Package models defines data structures for tate configurations.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgType is the declared type of a template argument.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgInteger ArgType = "integer"
)

// TagArg is the mandatory run argument holding the run's unique tag.
const TagArg = "Tag"

// DefaultPropsFile is used when a template does not name a props file.
const DefaultPropsFile = "specjbb2015.props"

// KnownArgTypes lists the argument types a template may declare.
func KnownArgTypes() []ArgType {
	return []ArgType{ArgString, ArgInteger}
}

// ZeroValue returns the placeholder a freshly created run gets for an
// argument of this type.
func (t ArgType) ZeroValue() (Value, error) {
	switch t {
	case ArgString:
		return String("0"), nil
	case ArgInteger:
		return Int(0), nil
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownArgType, string(t))
	}
}

// Parse converts user input into a Value of this type.
func (t ArgType) Parse(s string) (Value, error) {
	switch t {
	case ArgString:
		return String(s), nil
	case ArgInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not an integer", s)
		}
		return Int(n), nil
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownArgType, string(t))
	}
}

// ParseArgType validates a declared type name. Empty input means string.
func ParseArgType(s string) (ArgType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ArgString, nil
	}
	for _, t := range KnownArgTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownArgType, s)
}

// Accepts reports whether v conforms to the declared type.
func (t ArgType) Accepts(v Value) bool {
	switch t {
	case ArgString:
		return v.Kind() == KindString
	case ArgInteger:
		return v.Kind() == KindInteger
	default:
		return false
	}
}

// Template describes a class of benchmark run. Templates are stored by name
// in TateConfig.TemplateData; the name is not part of the object itself.
type Template struct {
	Args         []string            `json:"args" validate:"required,min=1,unique,dive,required"`
	Types        map[string]ArgType  `json:"types" validate:"required,dive,keys,required,endkeys,oneof=string integer"`
	Annotations  map[string]string   `json:"annotations,omitempty"`
	Translations map[string]string   `json:"translations,omitempty" validate:"omitempty,dive,keys,required,endkeys,required"`
	DefaultProps map[string]Value    `json:"default_props,omitempty"`
	PropOptions  map[string][]string `json:"prop_options,omitempty"`
	RunType      string              `json:"run_type,omitempty"`
	Java         string              `json:"java,omitempty"`
	Jar          string              `json:"jar,omitempty"`
	PropsFile    string              `json:"props_file,omitempty"`
}

// HasArg reports whether name is one of the template's arguments.
func (t Template) HasArg(name string) bool {
	for _, a := range t.Args {
		if a == name {
			return true
		}
	}
	return false
}

// PropsFileOrDefault returns the props file name, falling back to DefaultPropsFile.
func (t Template) PropsFileOrDefault() string {
	if t.PropsFile == "" {
		return DefaultPropsFile
	}
	return t.PropsFile
}
