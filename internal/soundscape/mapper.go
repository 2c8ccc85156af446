package soundscape

import (
	"fmt"
	"sort"
	"strings"
)

// Map reduces raw classifier scores to semantic categories and an environment
// estimate. Pure: identical input always yields identical output.
func (t *Taxonomy) Map(scores []ClassScore) *Result {
	return &Result{
		Categories:  t.mapCategories(scores),
		Environment: t.mapEnvironment(scores),
	}
}

// mapCategories aggregates class scores into categories. Each category keeps
// the maximum score among its matched classes, then the category scores are
// normalized to sum to 1.
func (t *Taxonomy) mapCategories(scores []ClassScore) []CategoryResult {
	aggregated := make(map[string]float64)
	var order []string

	for _, cs := range scores {
		if cs.Score < t.minScore {
			continue
		}

		category := t.findCategory(cs.Name)
		if category == "" {
			continue
		}

		if prev, seen := aggregated[category]; !seen {
			aggregated[category] = cs.Score
			order = append(order, category)
		} else if cs.Score > prev {
			aggregated[category] = cs.Score
		}
	}

	if len(aggregated) == 0 {
		return []CategoryResult{{Label: CategoryUnknown, Confidence: 1.0}}
	}

	var total float64
	for _, v := range aggregated {
		total += v
	}

	results := make([]CategoryResult, 0, len(order))
	for _, category := range order {
		confidence := aggregated[category]
		if total > 0 {
			confidence /= total
		} else {
			confidence = 1.0 / float64(len(order))
		}
		results = append(results, CategoryResult{Label: category, Confidence: confidence})
	}

	// Stable so ties keep first-matched order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	return results
}

// findCategory resolves a class name to a category: exact match first, then
// case-insensitive substring match in either direction, then keyword groups.
// Returns "" when nothing matches.
func (t *Taxonomy) findCategory(className string) string {
	for _, m := range t.classMappings {
		if m.ClassName == className {
			return m.Category
		}
	}

	classLower := strings.ToLower(className)
	for _, m := range t.classMappings {
		keyLower := strings.ToLower(m.ClassName)
		if strings.Contains(classLower, keyLower) || strings.Contains(keyLower, classLower) {
			return m.Category
		}
	}

	for _, group := range t.keywordGroups {
		for _, keyword := range group.Keywords {
			if strings.Contains(classLower, keyword) {
				return group.Category
			}
		}
	}

	return ""
}

// mapEnvironment estimates the environment type. A class credits its score to
// every environment bucket with a matching keyword, at most once per bucket.
func (t *Taxonomy) mapEnvironment(scores []ClassScore) EnvironmentAnalysis {
	envScores := make(map[string]float64, len(t.environment))
	for _, env := range t.environment {
		envScores[env.EnvType] = 0
	}

	for _, cs := range scores {
		classLower := strings.ToLower(cs.Name)
		for _, env := range t.environment {
			for _, keyword := range env.Keywords {
				if strings.Contains(classLower, strings.ToLower(keyword)) {
					envScores[env.EnvType] += cs.Score
					break
				}
			}
		}
	}

	var total float64
	for _, v := range envScores {
		total += v
	}

	if total > 0 {
		for k, v := range envScores {
			envScores[k] = v / total
		}
	} else {
		// Nothing matched, no evidence either way
		for k := range envScores {
			envScores[k] = 1.0 / float64(len(envScores))
		}
	}

	// Argmax over the fixed enumeration order; strict > keeps the earlier
	// type on ties.
	primary := EnvironmentTypes[0]
	for _, envType := range EnvironmentTypes[1:] {
		if envScores[envType] > envScores[primary] {
			primary = envType
		}
	}

	return EnvironmentAnalysis{
		PrimaryType: primary,
		TypeScores:  envScores,
		Description: describeEnvironment(primary, envScores),
	}
}

// describeEnvironment builds the description string: the primary type's base
// description plus any other types scoring above 0.2, in enumeration order.
func describeEnvironment(primary string, envScores map[string]float64) string {
	description := environmentDescriptions[primary]

	var others []string
	for _, envType := range EnvironmentTypes {
		if envType != primary && envScores[envType] > 0.2 {
			others = append(others, envType)
		}
	}

	if len(others) > 0 {
		description = fmt.Sprintf("%s (also elements of: %s)", description, strings.Join(others, ", "))
	}

	return description
}
