//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package tool

import "fmt"

// Toolbox is a collection of callable tools.
type Toolbox interface {
	// Tools returns the tools in the collection.
	Tools() []CallableTool
}

// Kit is a named, static tool collection with O(1) lookup by name.
type Kit struct {
	name   string
	tools  []CallableTool
	byName map[string]CallableTool
}

// NewKit creates a kit from the given tools. Later tools with duplicate
// names shadow earlier ones in lookup but both remain listed.
func NewKit(name string, tools ...CallableTool) *Kit {
	byName := make(map[string]CallableTool, len(tools))
	for _, t := range tools {
		byName[t.Declaration().Name] = t
	}
	return &Kit{name: name, tools: tools, byName: byName}
}

// Name returns the kit name.
func (k *Kit) Name() string { return k.name }

// Tools implements Toolbox.
func (k *Kit) Tools() []CallableTool {
	out := make([]CallableTool, len(k.tools))
	copy(out, k.tools)
	return out
}

// Declarations returns the declarations of all tools in the kit.
func (k *Kit) Declarations() []*Declaration {
	out := make([]*Declaration, 0, len(k.tools))
	for _, t := range k.tools {
		out = append(out, t.Declaration())
	}
	return out
}

// Lookup finds a tool by name.
func (k *Kit) Lookup(name string) (CallableTool, bool) {
	t, ok := k.byName[name]
	return t, ok
}

// Resolve flattens a heterogeneous tool list into a name-indexed map.
// Three shapes are accepted: a CallableTool, a Toolbox instance, and a
// Toolbox factory. Resolution happens once at task-setup time so lookup
// during execution never re-inspects the items.
func Resolve(items []any) (map[string]CallableTool, error) {
	out := make(map[string]CallableTool, len(items))
	add := func(t CallableTool) {
		out[t.Declaration().Name] = t
	}
	for _, item := range items {
		switch v := item.(type) {
		case CallableTool:
			add(v)
		case Toolbox:
			for _, t := range v.Tools() {
				add(t)
			}
		case func() Toolbox:
			for _, t := range v().Tools() {
				add(t)
			}
		default:
			return nil, fmt.Errorf("unsupported tool shape %T", item)
		}
	}
	return out, nil
}
