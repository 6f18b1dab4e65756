package compose

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)
	identifierPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	// aliasedPattern also captures an identifier following the placeholder,
	// with or without AS: group 3 is the AS keyword, group 4 the identifier.
	aliasedPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}(\s+((?i:as)\s+)?([A-Za-z_][A-Za-z0-9_]*))?`)
	leadingWith    = regexp.MustCompile(`(?is)^WITH\s+(RECURSIVE\s+)?`)
)

// clauseKeywords may follow a source relation without being its alias.
var clauseKeywords = map[string]bool{
	"AS": true, "WHERE": true, "JOIN": true, "LEFT": true, "RIGHT": true,
	"FULL": true, "INNER": true, "CROSS": true, "NATURAL": true, "OUTER": true,
	"ON": true, "USING": true, "GROUP": true, "ORDER": true, "HAVING": true,
	"LIMIT": true, "OFFSET": true, "WINDOW": true, "UNION": true, "EXCEPT": true,
	"INTERSECT": true, "INDEXED": true, "NOT": true, "AND": true, "OR": true,
	"IN": true, "IS": true, "THEN": true, "ELSE": true, "END": true, "WHEN": true,
	"RETURNING": true,
}

// References returns the distinct placeholder names in sql, in order of first
// appearance.
func References(sql string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(sql, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// countReferences reports how many times name appears as a placeholder in sql.
func countReferences(sql, name string) int {
	count := 0
	for _, match := range placeholderPattern.FindAllStringSubmatch(sql, -1) {
		if match[1] == name {
			count++
		}
	}
	return count
}

// substitute replaces every placeholder in sql with render(name). The first
// render error aborts the substitution.
func substitute(sql string, render func(name string) (string, error)) (string, error) {
	var firstErr error
	out := placeholderPattern.ReplaceAllStringFunc(sql, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := placeholderPattern.FindStringSubmatch(match)[1]
		rendered, err := render(name)
		if err != nil {
			firstErr = err
			return match
		}
		return rendered
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// substituteAliased is substitute for placeholders that may carry a table
// alias. render receives the alias, or "" when none follows, and reports
// whether its output already spells the alias out.
func substituteAliased(sql string, render func(name, alias string) (string, bool, error)) (string, error) {
	var builder strings.Builder
	last := 0
	for _, match := range aliasedPattern.FindAllStringSubmatchIndex(sql, -1) {
		name := sql[match[2]:match[3]]
		placeholderEnd := match[1]
		alias := ""
		if match[2*4] >= 0 {
			placeholderEnd = match[2*2]
			alias = sql[match[2*4]:match[2*4+1]]
			explicit := match[2*3] >= 0
			if !explicit && clauseKeywords[strings.ToUpper(alias)] {
				alias = ""
			}
		}

		rendered, consumed, err := render(name, alias)
		if err != nil {
			return "", err
		}
		builder.WriteString(sql[last:match[0]])
		builder.WriteString(rendered)
		if alias != "" && consumed {
			last = match[1]
		} else {
			last = placeholderEnd
		}
	}
	builder.WriteString(sql[last:])
	return builder.String(), nil
}

// renderNames replaces every placeholder with its bare name.
func renderNames(sql string) string {
	return placeholderPattern.ReplaceAllString(sql, "${1}")
}

func validateName(name string) error {
	if !identifierPattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q is not a valid identifier", name)
	}
	return nil
}

func trimStatement(sql string) string {
	return strings.TrimRight(strings.TrimSpace(sql), ";")
}
