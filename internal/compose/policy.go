package compose

// Usage describes how an intermediate result is consumed.
type Usage struct {
	// References is the largest number of times the result is read inside a
	// single statement.
	References int
	// Statements is the number of separate statements that read the result.
	Statements int
	// Layered reports that the result feeds another intermediate result.
	Layered bool
	// Expensive reports that recomputing the result across statements
	// should be avoided.
	Expensive bool
}

// Recommend applies the selection policy. It trades readability against
// reuse only; every strategy returns the same rows.
func Recommend(u Usage) Strategy {
	switch {
	case u.Statements > 1, u.Expensive:
		return StrategyMaterialized
	case u.References > 1, u.Layered:
		return StrategyNamed
	default:
		return StrategyInline
	}
}

// RecommendFor picks the strategy for a whole question: the most demanding
// recommendation among its steps wins.
func RecommendFor(q Question) Strategy {
	best := StrategyInline
	for _, step := range q.Steps {
		switch Recommend(stepUsage(q, step.Name)) {
		case StrategyMaterialized:
			return StrategyMaterialized
		case StrategyNamed:
			best = StrategyNamed
		}
	}
	return best
}

func stepUsage(q Question, name string) Usage {
	usage := Usage{Expensive: q.Expensive}
	for _, statement := range q.statements() {
		n := countReferences(statement, name)
		if n == 0 {
			continue
		}
		usage.Statements++
		if n > usage.References {
			usage.References = n
		}
	}
	for _, step := range q.Steps {
		if n := countReferences(step.Definition, name); n > 0 {
			usage.Layered = true
			if n > usage.References {
				usage.References = n
			}
		}
	}
	return usage
}
