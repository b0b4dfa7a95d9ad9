package util

import "sort"

// keyPriority lists locator keys that always sort first, in this order.
var keyPriority = map[string]int{
	"namespace": 0,
	"pod":       1,
	"container": 2,
}

// PrioritizedKeys returns the keys of m with namespace, pod and container
// first and everything else sorted alphabetically.
func PrioritizedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	SortPrioritized(keys)
	return keys
}

// SortPrioritized sorts names in place using the locator key priority.
func SortPrioritized(names []string) {
	sort.Slice(names, func(i, j int) bool {
		pi, iok := keyPriority[names[i]]
		pj, jok := keyPriority[names[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok:
			return true
		case jok:
			return false
		}
		return names[i] < names[j]
	})
}
