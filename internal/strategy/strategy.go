// Package strategy ships reference implementations of the engine's Strategy
// contract. They exist so games can be simulated out of the box and so the
// driver has opponents to pit against each other; real analysis subjects
// implement engine.Strategy themselves.
package strategy

import "sort"

// sortedNames returns map keys in a stable order, so seeded strategies make
// reproducible choices regardless of map iteration order.
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
