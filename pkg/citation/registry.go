package citation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Standard citation type labels shipped with the default rule table.
const (
	TypeUSC         = "USC"
	TypeCFR         = "CFR"
	TypeStateCode   = "State_Code"
	TypeSectionOnly = "Section_Only"
	TypeStatuteYear = "Statute_Year"
)

// Registry manages an ordered collection of citation rules. Order matters
// only for presentation; matching is type-independent. Safe for concurrent
// use.
type Registry struct {
	mu    sync.RWMutex
	rules []*Rule
	index map[string]int
	dir   string

	watcher *dirWatcher
	onError OnErrorFunc
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// DefaultRegistry creates a registry preloaded with the standard rule set:
// USC, CFR, State_Code, Section_Only, and Statute_Year.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range DefaultRules() {
		if err := r.Register(rule); err != nil {
			// The default table is fixed and validated by tests.
			panic(fmt.Sprintf("registering default rule: %v", err))
		}
	}
	return r
}

// DefaultRules returns the standard citation rules in presentation order.
//
// Section_Only is intentionally permissive: it re-matches section symbols
// that are part of a USC/CFR/State_Code citation. Duplication at the
// raw-match level is accepted; grouping happens later by canonical
// identity.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			Type:     TypeUSC,
			Pattern:  `\b(\d+)\s+U\.?S\.?C\.?\s+§?\s*(\d+[a-z]?(?:-\d+)?)`,
			Identity: []string{"$1", "USC", "$2"},
		},
		{
			Type:     TypeCFR,
			Pattern:  `\b(\d+)\s+C\.?F\.?R\.?\s+§?\s*(\d+(?:\.\d+)?)`,
			Identity: []string{"$1", "CFR", "$2"},
		},
		{
			Type:     TypeStateCode,
			Pattern:  `\b([A-Z][a-z]+)\s+(?:Code|Stat\.?|Rev\.?\s+Stat\.?)\s+§?\s*(\d+(?:[.-]\d+)*)`,
			Identity: []string{"$1", "Code", "$2"},
		},
		{
			Type:     TypeSectionOnly,
			Pattern:  `§\s*(\d+(?:[.-]\d+[a-z]?)*)`,
			Identity: []string{"§", "$1"},
		},
		{
			Type:     TypeStatuteYear,
			Pattern:  `\bPub\.?\s+L\.?\s+No\.?\s+(\d+-\d+)`,
			Identity: []string{"Pub. L. No.", "$1"},
		},
	}
}

// Register adds a rule to the registry. A rule with an already-registered
// type replaces the existing rule in place, preserving its position.
func (r *Registry) Register(rule *Rule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if pos, ok := r.index[rule.Type]; ok {
		r.rules[pos] = rule
		return nil
	}

	r.index[rule.Type] = len(r.rules)
	r.rules = append(r.rules, rule)
	return nil
}

// Unregister removes a rule from the registry.
func (r *Registry) Unregister(typeLabel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[typeLabel]
	if !ok {
		return fmt.Errorf("rule %q not found", typeLabel)
	}

	r.rules = append(r.rules[:pos], r.rules[pos+1:]...)
	delete(r.index, typeLabel)
	for label, p := range r.index {
		if p > pos {
			r.index[label] = p - 1
		}
	}
	return nil
}

// Get returns a rule by its type label.
func (r *Registry) Get(typeLabel string) (*Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[typeLabel]
	if !ok {
		return nil, false
	}
	return r.rules[pos], true
}

// Rules returns all registered rules in presentation order.
func (r *Registry) Rules() []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]*Rule, len(r.rules))
	copy(rules, r.rules)
	return rules
}

// Labels returns the registered type labels in presentation order.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		labels = append(labels, rule.Type)
	}
	return labels
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// ruleFile is the on-disk YAML document shape for rule tables.
type ruleFile struct {
	Rules []*Rule `yaml:"rules"`
}

// LoadFile loads rules from a single YAML file. Rules are registered in
// document order; duplicate types replace earlier registrations.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	for _, rule := range doc.Rules {
		if err := r.Register(rule); err != nil {
			return fmt.Errorf("registering rule from %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// LoadDirectory loads all YAML rule files from a directory. A missing
// directory is not an error; there is simply nothing to load.
func (r *Registry) LoadDirectory(dir string) error {
	r.mu.Lock()
	r.dir = dir
	r.mu.Unlock()

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading rules: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// Reload restores the default rule table and reapplies the configured
// rules directory on top of it.
func (r *Registry) Reload() error {
	r.mu.Lock()
	dir := r.dir
	r.rules = nil
	r.index = make(map[string]int)
	r.mu.Unlock()

	for _, rule := range DefaultRules() {
		if err := r.Register(rule); err != nil {
			return err
		}
	}

	if dir == "" {
		return nil
	}
	return r.LoadDirectory(dir)
}

// SaveFile writes the registry's current rule table to a YAML file.
func (r *Registry) SaveFile(path string) error {
	doc := ruleFile{Rules: r.Rules()}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing rules file: %w", err)
	}
	return nil
}
