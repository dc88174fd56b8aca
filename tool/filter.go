//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package tool

// Filter decides, by name, whether a tool stays visible.
type Filter func(string) bool

// FilterTools creates a Toolbox exposing only the tools of the original
// toolbox whose names pass the filter.
func FilterTools(box Toolbox, filter Filter) Toolbox {
	return &filteredToolbox{original: box, filter: filter}
}

type filteredToolbox struct {
	original Toolbox
	filter   Filter
}

// Tools returns the filtered tools from the original toolbox.
func (f *filteredToolbox) Tools() []CallableTool {
	original := f.original.Tools()
	if f.filter == nil {
		return original
	}
	var result []CallableTool
	for _, t := range original {
		if f.filter(t.Declaration().Name) {
			result = append(result, t)
		}
	}
	return result
}

// IncludeNames creates a Filter that keeps only the specified tool names.
func IncludeNames(names ...string) Filter {
	allowed := make(map[string]bool)
	for _, name := range names {
		allowed[name] = true
	}
	return func(name string) bool {
		return allowed[name]
	}
}

// ExcludeNames creates a Filter that drops the specified tool names.
func ExcludeNames(names ...string) Filter {
	excluded := make(map[string]bool)
	for _, name := range names {
		excluded[name] = true
	}
	return func(name string) bool {
		return !excluded[name]
	}
}
