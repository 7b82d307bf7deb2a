package models

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// Run is one concrete instantiation of a template.
type Run struct {
	TemplateType string           `json:"template_type" validate:"required"`
	Args         map[string]Value `json:"args" validate:"required"`
	PropsExtra   map[string]Value `json:"props_extra,omitempty"`
}

// Tag returns the run's tag, or "" when it is missing or not a string.
func (r Run) Tag() string {
	s, _ := r.Args[TagArg].Str()
	return s
}

// SetTag replaces the run's tag.
func (r *Run) SetTag(tag string) {
	if r.Args == nil {
		r.Args = make(map[string]Value)
	}
	r.Args[TagArg] = String(tag)
}

// Clone returns a deep copy of the run.
func (r Run) Clone() Run {
	return deepcopy.Copy(r).(Run)
}

// SameTag compares two runs by tag.
func SameTag(a, b Run) bool {
	return a.Tag() != "" && a.Tag() == b.Tag()
}

// TateConfig is the persisted configuration document.
type TateConfig struct {
	TemplateData map[string]Template `json:"TemplateData"`
	RunList      []Run               `json:"RunList"`
}

// NewTateConfig returns an empty configuration.
func NewTateConfig() *TateConfig {
	return &TateConfig{
		TemplateData: make(map[string]Template),
		RunList:      []Run{},
	}
}

// Clone returns a deep copy of the configuration.
func (c *TateConfig) Clone() *TateConfig {
	cp := deepcopy.Copy(*c).(TateConfig)
	if cp.TemplateData == nil {
		cp.TemplateData = make(map[string]Template)
	}
	if cp.RunList == nil {
		cp.RunList = []Run{}
	}
	return &cp
}

// Controller names the benchmark controller of a resolved run.
type Controller struct {
	Type string `json:"type"`
}

// ResolvedRun is the fully merged specification handed to the benchmark
// executor. Field names are part of the executor contract.
type ResolvedRun struct {
	Controller Controller       `json:"controller"`
	Backends   int              `json:"backends"`
	Injectors  int              `json:"injectors"`
	Java       string           `json:"java"`
	Jar        string           `json:"jar"`
	Props      map[string]Value `json:"props"`
	PropsFile  string           `json:"props_file"`
}

func (r ResolvedRun) String() string {
	return fmt.Sprintf("%s (backends=%d, injectors=%d, props=%d)", r.Controller.Type, r.Backends, r.Injectors, len(r.Props))
}
