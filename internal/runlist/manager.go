// Package runlist manages the ordered list of benchmark runs of one loaded
// configuration, together with the template registry the runs refer to.
//
// The Manager is the single owner of both collections for the lifetime of a
// loaded configuration. It is not safe for concurrent use; the CLI and the
// dialogue drive it from one goroutine and persist explicitly via Config().
package runlist

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tatebench/tate/internal/logging"
	"github.com/tatebench/tate/internal/models"
	"github.com/tatebench/tate/internal/registry"
	"github.com/tatebench/tate/internal/validation"
)

// maxTagAttempts bounds tag regeneration on collision.
const maxTagAttempts = 16

// CopySuffix is appended to the tag of a duplicated run.
const CopySuffix = "-(copy)"

// TagMatch selects how Remove and Get compare tags.
type TagMatch int

const (
	// MatchExact requires the stored tag to equal the query.
	MatchExact TagMatch = iota
	// MatchSubstring matches any stored tag containing the query.
	MatchSubstring
)

// ParseTagMatch maps a settings value to a TagMatch.
func ParseTagMatch(s string) (TagMatch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "substring":
		return MatchSubstring, nil
	default:
		return MatchExact, fmt.Errorf("unknown tag match mode %q (use exact or substring)", s)
	}
}

func (m TagMatch) matches(stored, query string) bool {
	if m == MatchSubstring {
		return strings.Contains(stored, query)
	}
	return stored == query
}

// Manager performs CRUD and ordering operations over the run list.
type Manager struct {
	templates *registry.Registry
	runs      []models.Run
	validator *validation.Validator
	match     TagMatch
	newSuffix func() string
	logger    *logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithTagMatch sets the tag comparison used by Remove and Get.
func WithTagMatch(m TagMatch) Option {
	return func(mgr *Manager) {
		mgr.match = m
	}
}

// WithLogger sets the logger used for mutation events.
func WithLogger(l *logging.Logger) Option {
	return func(mgr *Manager) {
		if l != nil {
			mgr.logger = l
		}
	}
}

// WithTagSuffix replaces the random tag suffix source.
func WithTagSuffix(fn func() string) Option {
	return func(mgr *Manager) {
		if fn != nil {
			mgr.newSuffix = fn
		}
	}
}

// NewManager takes ownership of a copy of cfg. Tags are not re-checked for
// uniqueness on load.
func NewManager(cfg *models.TateConfig, v *validation.Validator, opts ...Option) *Manager {
	if cfg == nil {
		cfg = models.NewTateConfig()
	}
	cp := cfg.Clone()
	m := &Manager{
		templates: registry.New(cp.TemplateData),
		runs:      cp.RunList,
		validator: v,
		newSuffix: randomSuffix,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func randomSuffix() string {
	return uuid.NewString()[:8]
}

// Templates returns the template registry owned by the manager.
func (m *Manager) Templates() *registry.Registry {
	return m.templates
}

// PutTemplate validates t and registers it under name.
func (m *Manager) PutTemplate(name string, t models.Template, overwrite bool) error {
	if err := m.validator.CheckTemplate(name, t); err != nil {
		return err
	}
	if err := m.templates.Put(name, t, overwrite); err != nil {
		return err
	}
	m.logger.Debug().Str("template", name).Bool("overwrite", overwrite).Msg("template registered")
	return nil
}

// Len returns the number of runs.
func (m *Manager) Len() int {
	return len(m.runs)
}

// Runs returns a deep copy of the run list.
func (m *Manager) Runs() []models.Run {
	out := make([]models.Run, len(m.runs))
	for i, r := range m.runs {
		out[i] = r.Clone()
	}
	return out
}

// Tags returns the tags of all runs in list order.
func (m *Manager) Tags() []string {
	tags := make([]string, len(m.runs))
	for i, r := range m.runs {
		tags[i] = r.Tag()
	}
	return tags
}

// Config returns a snapshot of templates and runs for persistence or generation.
func (m *Manager) Config() *models.TateConfig {
	return &models.TateConfig{
		TemplateData: m.templates.All(),
		RunList:      m.Runs(),
	}
}

// Get returns a copy of the first run whose tag matches.
func (m *Manager) Get(tag string) (models.Run, error) {
	idx := m.indexOf(tag, m.match)
	if idx < 0 {
		return models.Run{}, fmt.Errorf("%w: %q", models.ErrNotFound, tag)
	}
	return m.runs[idx].Clone(), nil
}

func (m *Manager) indexOf(tag string, match TagMatch) int {
	if tag == "" {
		return -1
	}
	for i, r := range m.runs {
		if match.matches(r.Tag(), tag) {
			return i
		}
	}
	return -1
}

// HasTag reports whether a run with exactly this tag exists.
func (m *Manager) HasTag(tag string) bool {
	return m.hasTag(tag)
}

func (m *Manager) hasTag(tag string) bool {
	return m.indexOf(tag, MatchExact) >= 0
}

// Create appends a new run of the given template with every argument set to
// its type's zero value and returns the generated tag
// "<runType>-<8 hex chars>".
func (m *Manager) Create(runType string) (string, error) {
	t, ok := m.templates.Get(runType)
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownTemplate, runType)
	}

	run := models.Run{
		TemplateType: runType,
		Args:         make(map[string]models.Value, len(t.Args)+1),
	}
	for _, arg := range t.Args {
		zero, err := t.Types[arg].ZeroValue()
		if err != nil {
			return "", fmt.Errorf("template %q arg %q: %w", runType, arg, err)
		}
		run.Args[arg] = zero
	}

	tag, err := m.uniqueTag(runType)
	if err != nil {
		return "", err
	}
	run.SetTag(tag)

	m.runs = append(m.runs, run)
	m.logger.Debug().Str("tag", tag).Str("template", runType).Msg("run created")
	return tag, nil
}

func (m *Manager) uniqueTag(runType string) (string, error) {
	for i := 0; i < maxTagAttempts; i++ {
		tag := fmt.Sprintf("%s-%s", runType, m.newSuffix())
		if !m.hasTag(tag) {
			return tag, nil
		}
		m.logger.Warn().Str("tag", tag).Int("attempt", i+1).Msg("generated tag already in use, retrying")
	}
	return "", fmt.Errorf("%w: could not generate a unique tag for %q after %d attempts",
		models.ErrDuplicateTag, runType, maxTagAttempts)
}

// Duplicate inserts a deep copy of the run tagged fromTag, with CopySuffix
// appended to the tag, and returns the copy.
func (m *Manager) Duplicate(fromTag string) (models.Run, error) {
	idx := m.indexOf(fromTag, MatchExact)
	if idx < 0 {
		return models.Run{}, fmt.Errorf("%w: %q", models.ErrNotFound, fromTag)
	}

	cp := m.runs[idx].Clone()
	cp.SetTag(m.runs[idx].Tag() + CopySuffix)
	if err := m.Insert(cp); err != nil {
		return models.Run{}, fmt.Errorf("failed to insert copy of %q: %w", fromTag, err)
	}
	return cp.Clone(), nil
}

// Insert validates r and appends it. The run's template must be registered
// and its tag must not already be in use.
func (m *Manager) Insert(r models.Run) error {
	if err := m.validator.CheckRun(r); err != nil {
		return err
	}
	t, ok := m.templates.Get(r.TemplateType)
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownTemplate, r.TemplateType)
	}
	if err := m.validator.CheckRunAgainst(r, t); err != nil {
		return err
	}
	if m.hasTag(r.Tag()) {
		return fmt.Errorf("%w: %q", models.ErrDuplicateTag, r.Tag())
	}

	m.runs = append(m.runs, r.Clone())
	m.logger.Debug().Str("tag", r.Tag()).Str("template", r.TemplateType).Msg("run inserted")
	return nil
}

// Update replaces the arguments and extra props of the run tagged tag. The
// tag itself may change, as long as it stays unique.
func (m *Manager) Update(tag string, r models.Run) error {
	idx := m.indexOf(tag, MatchExact)
	if idx < 0 {
		return fmt.Errorf("%w: %q", models.ErrNotFound, tag)
	}
	if err := m.validator.CheckRun(r); err != nil {
		return err
	}
	t, ok := m.templates.Get(r.TemplateType)
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownTemplate, r.TemplateType)
	}
	if err := m.validator.CheckRunAgainst(r, t); err != nil {
		return err
	}
	if !models.SameTag(m.runs[idx], r) && m.hasTag(r.Tag()) {
		return fmt.Errorf("%w: %q", models.ErrDuplicateTag, r.Tag())
	}

	m.runs[idx] = r.Clone()
	m.logger.Debug().Str("tag", tag).Str("new_tag", r.Tag()).Msg("run updated")
	return nil
}

// Remove deletes the first run whose tag matches and returns it. At most one
// run is removed per call.
func (m *Manager) Remove(tag string) (models.Run, error) {
	return m.removeFirst(tag, m.match)
}

// RemoveExact deletes the run whose tag equals tag, regardless of the
// configured TagMatch.
func (m *Manager) RemoveExact(tag string) (models.Run, error) {
	return m.removeFirst(tag, MatchExact)
}

func (m *Manager) removeFirst(tag string, match TagMatch) (models.Run, error) {
	idx := m.indexOf(tag, match)
	if idx < 0 {
		return models.Run{}, fmt.Errorf("%w: %q", models.ErrNotFound, tag)
	}
	removed := m.runs[idx]
	m.runs = append(m.runs[:idx], m.runs[idx+1:]...)
	m.logger.Debug().Str("tag", removed.Tag()).Msg("run removed")
	return removed, nil
}

// Reorder swaps the run tagged tag with the run at toIndex.
func (m *Manager) Reorder(tag string, toIndex int) error {
	if toIndex < 0 || toIndex >= len(m.runs) {
		return fmt.Errorf("%w: %d (run list has %d entries)", models.ErrIndexOutOfRange, toIndex, len(m.runs))
	}
	from := m.indexOf(tag, MatchExact)
	if from < 0 {
		return fmt.Errorf("%w: %q", models.ErrNotFound, tag)
	}
	m.runs[from], m.runs[toIndex] = m.runs[toIndex], m.runs[from]
	m.logger.Debug().Str("tag", tag).Int("from", from).Int("to", toIndex).Msg("run moved")
	return nil
}
