// Package registry holds the in-memory mapping of template name to template.
package registry

import (
	"fmt"
	"sort"

	"github.com/mohae/deepcopy"

	"github.com/tatebench/tate/internal/models"
)

// Registry maps template names to templates. Values are copied in and out,
// so callers can't mutate registry state through a returned template.
type Registry struct {
	templates map[string]models.Template
}

// ArgInfo describes one template argument, in declaration order.
type ArgInfo struct {
	Name        string
	Type        models.ArgType
	Annotation  string
	Translation string
	Options     []string
}

// New builds a registry from already validated templates.
func New(templates map[string]models.Template) *Registry {
	r := &Registry{templates: make(map[string]models.Template, len(templates))}
	for name, t := range templates {
		r.templates[name] = copyTemplate(t)
	}
	return r
}

// Get returns the template registered under name.
func (r *Registry) Get(name string) (models.Template, bool) {
	t, ok := r.templates[name]
	if !ok {
		return models.Template{}, false
	}
	return copyTemplate(t), true
}

// Put registers t under name. An existing template is only replaced when
// overwrite is set; confirming the overwrite is the caller's job.
func (r *Registry) Put(name string, t models.Template, overwrite bool) error {
	if name == "" {
		return models.NewSchemaError("template", name, "name must not be empty")
	}
	if _, exists := r.templates[name]; exists && !overwrite {
		return fmt.Errorf("%w: %q", models.ErrTemplateExists, name)
	}
	r.templates[name] = copyTemplate(t)
	return nil
}

// Has reports whether a template is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Types returns the registered template names, sorted.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.templates)
}

// Args returns the arguments of the named template with their type,
// annotation and translation, in the template's argument order.
func (r *Registry) Args(name string) ([]ArgInfo, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownTemplate, name)
	}
	infos := make([]ArgInfo, 0, len(t.Args))
	for _, arg := range t.Args {
		infos = append(infos, ArgInfo{
			Name:        arg,
			Type:        t.Types[arg],
			Annotation:  t.Annotations[arg],
			Translation: t.Translations[arg],
			Options:     append([]string(nil), t.PropOptions[arg]...),
		})
	}
	return infos, nil
}

// All returns a copy of every registered template keyed by name.
func (r *Registry) All() map[string]models.Template {
	out := make(map[string]models.Template, len(r.templates))
	for name, t := range r.templates {
		out[name] = copyTemplate(t)
	}
	return out
}

func copyTemplate(t models.Template) models.Template {
	return deepcopy.Copy(t).(models.Template)
}
