package compose

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Strategy names one of the three ways an intermediate result can be
// expressed. The zero value means "use the recommended strategy".
type Strategy string

const (
	StrategyInline       Strategy = "inline"
	StrategyNamed        Strategy = "named"
	StrategyMaterialized Strategy = "materialized"
)

// Strategies lists every concrete strategy in a stable order.
var Strategies = []Strategy{StrategyInline, StrategyNamed, StrategyMaterialized}

func (s Strategy) String() string {
	if s == "" {
		return "auto"
	}
	return string(s)
}

// ParseStrategy accepts the strategy names and their SQL-flavoured aliases.
// An empty value or "auto" returns the zero Strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return "", nil
	case "inline", "subquery":
		return StrategyInline, nil
	case "named", "cte", "with":
		return StrategyNamed, nil
	case "materialized", "temp", "temporary":
		return StrategyMaterialized, nil
	}
	return "", errors.Newf("unknown strategy %q", value)
}

// Binding gives a name to the result set of a definition query.
type Binding struct {
	Name       string
	Definition string
}

// Named returns a statement-scoped binding.
func Named(name, definition string) Binding {
	return Binding{Name: name, Definition: definition}
}

// Position is the clause an inline subexpression is embedded into.
type Position int

const (
	// PositionSource embeds the subexpression as a derived table aliased by
	// its slot name.
	PositionSource Position = iota
	// PositionScalar embeds the subexpression as a scalar in a selection list.
	PositionScalar
	// PositionPredicate embeds the subexpression inside a filter predicate.
	PositionPredicate
)

// Inline is an unnamed subexpression embedded at each {{Slot}} occurrence.
type Inline struct {
	Slot       string
	Expression string
	Position   Position
}

// render embeds the expression. In source position the derived table takes
// alias when the statement gives one, the slot name otherwise.
func (i Inline) render(alias string) string {
	expr := trimStatement(i.Expression)
	if i.Position != PositionSource {
		return "(" + expr + ")"
	}
	if alias == "" {
		alias = i.Slot
	}
	return "(" + expr + ") AS " + alias
}

// ComposeInline embeds every subexpression into main. Subexpressions must be
// self-contained: a placeholder inside one fails with ErrReference.
func ComposeInline(main string, subs ...Inline) (string, error) {
	bySlot := make(map[string]Inline, len(subs))
	for _, sub := range subs {
		if err := validateName(sub.Slot); err != nil {
			return "", err
		}
		if _, ok := bySlot[sub.Slot]; ok {
			return "", errors.Wrapf(ErrNameConflict, "slot %q is bound twice", sub.Slot)
		}
		if refs := References(sub.Expression); len(refs) > 0 {
			return "", errors.Wrapf(ErrReference, "subexpression %q is not self-contained: it references %q", sub.Slot, refs[0])
		}
		bySlot[sub.Slot] = sub
	}

	return substituteAliased(trimStatement(main), func(name, alias string) (string, bool, error) {
		sub, ok := bySlot[name]
		if !ok {
			return "", false, errors.Wrapf(ErrReference, "%q is not bound", name)
		}
		if sub.Position != PositionSource {
			// What follows a scalar is a column alias; leave it in place.
			return sub.render(""), false, nil
		}
		return sub.render(alias), true, nil
	})
}

// ComposeNamed prefixes main with a WITH clause holding every binding, in
// order. A definition may only reference bindings declared before it. When
// main has a WITH clause of its own, its bindings follow ours in one clause.
func ComposeNamed(main string, bindings ...Binding) (string, error) {
	if err := validateBindings(bindings); err != nil {
		return "", err
	}

	byName := make(map[string]bool, len(bindings))
	for _, binding := range bindings {
		byName[binding.Name] = true
	}
	renderName := func(name string) (string, error) {
		if !byName[name] {
			return "", errors.Wrapf(ErrReference, "%q is not bound", name)
		}
		return name, nil
	}

	body, err := substitute(trimStatement(main), renderName)
	if err != nil {
		return "", err
	}
	if len(bindings) == 0 {
		return body, nil
	}

	header := "WITH\n"
	merged := false
	if loc := leadingWith.FindStringSubmatchIndex(body); loc != nil {
		if loc[2] >= 0 {
			header = "WITH RECURSIVE\n"
		}
		body = body[loc[1]:]
		merged = true
	}

	var builder strings.Builder
	builder.WriteString(header)
	for idx, binding := range bindings {
		definition, err := substitute(trimStatement(binding.Definition), renderName)
		if err != nil {
			return "", err
		}
		builder.WriteString("  ")
		builder.WriteString(binding.Name)
		builder.WriteString(" AS (")
		builder.WriteString(definition)
		builder.WriteString(")")
		if idx < len(bindings)-1 || merged {
			builder.WriteString(",")
		}
		builder.WriteString("\n")
	}
	if merged {
		builder.WriteString("  ")
	}
	builder.WriteString(body)
	return builder.String(), nil
}

// validateBindings enforces unique names and backward-only references.
func validateBindings(bindings []Binding) error {
	declared := make(map[string]int, len(bindings))
	for idx, binding := range bindings {
		if err := validateName(binding.Name); err != nil {
			return err
		}
		if _, ok := declared[binding.Name]; ok {
			return errors.Wrapf(ErrNameConflict, "%q is bound twice", binding.Name)
		}
		declared[binding.Name] = idx
	}

	for idx, binding := range bindings {
		for _, ref := range References(binding.Definition) {
			at, ok := declared[ref]
			switch {
			case !ok:
				return errors.Wrapf(ErrReference, "%q references %q, which is not bound", binding.Name, ref)
			case at >= idx:
				return errors.Wrapf(ErrReference, "%q references %q before it is defined", binding.Name, ref)
			}
		}
	}
	return nil
}
