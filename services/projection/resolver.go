package projection

import (
	"sort"
	"strings"

	"rga/api/models"
)

type Resolver struct {
	table Table
}

func NewResolver(table Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve turns logical include/exclude paths into the sorted physical
// fields to fetch. Include wins when both are given.
func (r *Resolver) Resolve(include []string, exclude []string) ([]string, error) {
	include, exclude = cleanPaths(include), cleanPaths(exclude)

	fields := map[string]bool{}
	switch {
	case len(include) > 0:
		for _, requested := range include {
			matched := false
			for key, physical := range r.table.fields {
				if covers(key, requested) {
					matched = true
					addAll(fields, physical)
				}
			}
			if !matched {
				return nil, models.NewValidationError("unknown %s field '%s'", r.table.name, requested)
			}
		}
	case len(exclude) > 0:
		for key, physical := range r.table.fields {
			excluded := false
			for _, prefix := range exclude {
				if key == prefix || strings.HasPrefix(key, prefix+".") {
					excluded = true
					break
				}
			}
			if !excluded {
				addAll(fields, physical)
			}
		}
	default:
		for _, physical := range r.table.fields {
			addAll(fields, physical)
		}
	}
	addAll(fields, r.table.required)

	out := make([]string, 0, len(fields))
	for field := range fields {
		out = append(out, field)
	}
	sort.Strings(out)
	return out, nil
}

// covers reports whether a logical key answers a requested path: the same
// path, a child of it, or a parent of it.
func covers(key string, requested string) bool {
	return key == requested ||
		strings.HasPrefix(key, requested+".") ||
		strings.HasPrefix(requested, key+".")
}

func addAll(set map[string]bool, values []string) {
	for _, v := range values {
		set[v] = true
	}
}

func cleanPaths(paths []string) []string {
	var out []string
	for _, path := range paths {
		if trimmed := strings.Trim(strings.TrimSpace(path), "."); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
