//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package schema derives JSON schemas from Go types for tool declarations.
package schema

import (
	"reflect"
	"strings"

	"github.com/ensembleworks/ensemble/tool"
)

// Generate derives a JSON schema from a reflect.Type. The derivation is
// deterministic: generating twice from the same type yields identical
// schemas. Unsupported kinds map to "string".
func Generate(t reflect.Type) *tool.Schema {
	if t == nil {
		return &tool.Schema{Type: tool.TypeObject}
	}
	return generate(t)
}

func generate(t reflect.Type) *tool.Schema {
	switch t.Kind() {
	case reflect.Ptr:
		return generate(t.Elem())
	case reflect.String:
		return &tool.Schema{Type: tool.TypeString}
	case reflect.Bool:
		return &tool.Schema{Type: tool.TypeBoolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &tool.Schema{Type: tool.TypeInteger}
	case reflect.Float32, reflect.Float64:
		return &tool.Schema{Type: tool.TypeNumber}
	case reflect.Slice, reflect.Array:
		return &tool.Schema{Type: tool.TypeArray, Items: generate(t.Elem())}
	case reflect.Map:
		return &tool.Schema{Type: tool.TypeObject}
	case reflect.Struct:
		return generateStruct(t)
	default:
		// Interfaces and anything exotic degrade to string.
		return &tool.Schema{Type: tool.TypeString}
	}
}

func generateStruct(t reflect.Type) *tool.Schema {
	s := &tool.Schema{
		Type:       tool.TypeObject,
		Properties: map[string]*tool.Schema{},
		Required:   []string{},
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := parseJSONTag(field)
		if skip {
			continue
		}
		fieldSchema := generate(field.Type)
		if desc := field.Tag.Get("description"); desc != "" {
			fieldSchema.Description = desc
		} else if fieldSchema.Description == "" {
			fieldSchema.Description = "Parameter: " + name
		}
		s.Properties[name] = fieldSchema
		// Pointer fields and omitempty fields are optional.
		if field.Type.Kind() != reflect.Ptr && !omitEmpty {
			s.Required = append(s.Required, name)
		}
	}
	return s
}

func parseJSONTag(field reflect.StructField) (name string, omitEmpty, skip bool) {
	name = field.Name
	jsonTag := field.Tag.Get("json")
	if jsonTag == "-" {
		return "", false, true
	}
	if jsonTag == "" {
		return name, false, false
	}
	if idx := strings.Index(jsonTag, ","); idx != -1 {
		if jsonTag[:idx] != "" {
			name = jsonTag[:idx]
		}
		omitEmpty = strings.Contains(jsonTag[idx:], "omitempty")
		return name, omitEmpty, false
	}
	return jsonTag, false, false
}
