package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/doclint/internal/diag"
)

// Rule identifiers.
const (
	MissingReturn        = "missing-return"
	ConstructorReturn    = "constructor-return"
	UnexpectedReturn     = "unexpected-return"
	AnonymousTopLevel    = "anonymous-top-level"
	ConstructorName      = "constructor-name"
	MissingParam         = "missing-param"
	UnknownParam         = "unknown-param"
	MissingThis          = "missing-this"
	MalformedDoc         = "malformed-doc"
	TypeNullability      = "type-nullability"
	MisplacedNullability = "misplaced-nullability"
	ExtendsCycle         = "extends-cycle"
)

// Off disables a rule in a Configure override.
const Off = "off"

var (
	// ErrUnknownRule is returned when configuration names a rule that does not exist.
	ErrUnknownRule = errors.New("unknown rule")

	// ErrInvalidLevel is returned for an override that is neither a severity nor "off".
	ErrInvalidLevel = errors.New("invalid rule level")
)

// Registry is an ordered set of rules.
type Registry struct {
	rules []Rule
}

// NewRegistry creates a registry from rules. Duplicate IDs keep the last.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{}
	for _, rule := range rules {
		r.add(rule)
	}
	return r
}

// Default returns the registry of built-in rules at their default severities.
func Default() *Registry {
	return NewRegistry(
		Rule{
			ID:          MissingReturn,
			Description: "function returns a value but has no @return annotation",
			Severity:    diag.SevError,
			Kind:        KindFunction,
			Function:    checkMissingReturn,
		},
		Rule{
			ID:          ConstructorReturn,
			Description: "constructor must not declare @return",
			Severity:    diag.SevError,
			Kind:        KindFunction,
			Function:    checkConstructorReturn,
		},
		Rule{
			ID:          UnexpectedReturn,
			Description: "@return declares a value but the function never returns one",
			Severity:    diag.SevWarning,
			Kind:        KindFunction,
			Function:    checkUnexpectedReturn,
		},
		Rule{
			ID:          AnonymousTopLevel,
			Description: "top-level function has no name",
			Severity:    diag.SevWarning,
			Kind:        KindFunction,
			Function:    checkAnonymousTopLevel,
		},
		Rule{
			ID:          ConstructorName,
			Description: "constructor name differs from its enclosing type",
			Severity:    diag.SevError,
			Kind:        KindFunction,
			Function:    checkConstructorName,
		},
		Rule{
			ID:          MissingParam,
			Description: "documented function has a parameter without @param",
			Severity:    diag.SevWarning,
			Kind:        KindFunction,
			Function:    checkMissingParam,
		},
		Rule{
			ID:          UnknownParam,
			Description: "@param names no formal parameter",
			Severity:    diag.SevError,
			Kind:        KindFunction,
			Function:    checkUnknownParam,
		},
		Rule{
			ID:          MissingThis,
			Description: "non-method function references this without @this",
			Severity:    diag.SevWarning,
			Kind:        KindFunction,
			Function:    checkMissingThis,
		},
		Rule{
			ID:          MalformedDoc,
			Description: "documentation comment has malformed tag or type syntax",
			Severity:    diag.SevError,
			Kind:        KindDoc,
			Doc:         checkMalformedDoc,
		},
		Rule{
			ID:          TypeNullability,
			Description: "object type name lacks an explicit nullability marker",
			Severity:    diag.SevError,
			Kind:        KindDoc,
			Doc:         checkTypeNullability,
		},
		Rule{
			ID:          MisplacedNullability,
			Description: "nullability marker placed after the type",
			Severity:    diag.SevError,
			Kind:        KindDoc,
			Doc:         checkMisplacedNullability,
		},
		Rule{
			ID:          ExtendsCycle,
			Description: "type extends chain forms a cycle",
			Severity:    diag.SevError,
			Kind:        KindType,
			Types:       checkExtendsCycle,
		},
	)
}

func (r *Registry) add(rule Rule) {
	for i := range r.rules {
		if r.rules[i].ID == rule.ID {
			r.rules[i] = rule
			return
		}
	}
	r.rules = append(r.rules, rule)
}

// Rules returns the rules in registration order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of enabled rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Lookup finds a rule by ID.
func (r *Registry) Lookup(id string) (Rule, bool) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}

// OfKind returns the rules of one kind in registration order.
func (r *Registry) OfKind(kind Kind) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if rule.Kind == kind {
			out = append(out, rule)
		}
	}
	return out
}

// Configure returns a copy of the registry with per-rule overrides
// applied. A value is a severity name or "off". Unknown rule IDs and
// invalid levels are errors; all of them are reported together.
func (r *Registry) Configure(overrides map[string]string) (*Registry, error) {
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	disabled := make(map[string]bool)
	severities := make(map[string]diag.Severity)
	var errs []error
	for _, id := range ids {
		if _, ok := r.Lookup(id); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownRule, id))
			continue
		}
		level := strings.ToLower(strings.TrimSpace(overrides[id]))
		if level == Off {
			disabled[id] = true
			continue
		}
		sev, err := diag.ParseSeverity(level)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w for %s: %q", ErrInvalidLevel, id, overrides[id]))
			continue
		}
		severities[id] = sev
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	out := &Registry{}
	for _, rule := range r.rules {
		if disabled[rule.ID] {
			continue
		}
		if sev, ok := severities[rule.ID]; ok {
			rule.Severity = sev
		}
		out.rules = append(out.rules, rule)
	}
	return out, nil
}
