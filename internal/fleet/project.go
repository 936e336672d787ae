package fleet

import "strings"

// Filter selects a subset of the fleet view: a kind tab (KindAll matches
// everything) and a case-insensitive name substring.
type Filter struct {
	Kind   Kind
	Search string
}

// Project derives the filtered service list from a view without mutating
// it. Arrival order is preserved; no re-sorting.
func Project(v View, f Filter) []ServiceView {
	needle := strings.ToLower(f.Search)
	out := make([]ServiceView, 0, len(v.Services))
	for _, svc := range v.Services {
		if f.Kind != "" && f.Kind != KindAll && svc.Type != f.Kind {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(svc.Name), needle) {
			continue
		}
		out = append(out, svc)
	}
	return out
}

// CountByKind tallies services per kind over the full view, for the
// console's tab badges.
func CountByKind(v View) map[Kind]int {
	counts := make(map[Kind]int, 4)
	for _, svc := range v.Services {
		counts[svc.Type]++
		counts[KindAll]++
	}
	return counts
}
