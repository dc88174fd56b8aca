//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensembleworks/ensemble/tool"
)

type weatherInput struct {
	City    string   `json:"city" description:"City name"`
	Days    int      `json:"days,omitempty"`
	Celsius bool     `json:"celsius"`
	Tags    []string `json:"tags,omitempty"`
	Ratio   float64  `json:"ratio"`
	Skip    string   `json:"-"`
	hidden  string
}

func TestGenerate_Struct(t *testing.T) {
	s := Generate(reflect.TypeOf(weatherInput{}))
	require.Equal(t, tool.TypeObject, s.Type)

	assert.Equal(t, tool.TypeString, s.Properties["city"].Type)
	assert.Equal(t, "City name", s.Properties["city"].Description)
	assert.Equal(t, tool.TypeInteger, s.Properties["days"].Type)
	assert.Equal(t, tool.TypeBoolean, s.Properties["celsius"].Type)
	assert.Equal(t, tool.TypeArray, s.Properties["tags"].Type)
	assert.Equal(t, tool.TypeString, s.Properties["tags"].Items.Type)
	assert.Equal(t, tool.TypeNumber, s.Properties["ratio"].Type)

	assert.NotContains(t, s.Properties, "Skip")
	assert.NotContains(t, s.Properties, "hidden")

	// omitempty fields are optional.
	assert.ElementsMatch(t, []string{"city", "celsius", "ratio"}, s.Required)

	// Fields without a description tag get the generated placeholder.
	assert.Equal(t, "Parameter: days", s.Properties["days"].Description)
}

func TestGenerate_Scalars(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"string", reflect.TypeOf(""), tool.TypeString},
		{"int", reflect.TypeOf(0), tool.TypeInteger},
		{"uint32", reflect.TypeOf(uint32(0)), tool.TypeInteger},
		{"float", reflect.TypeOf(0.0), tool.TypeNumber},
		{"bool", reflect.TypeOf(false), tool.TypeBoolean},
		{"map", reflect.TypeOf(map[string]any{}), tool.TypeObject},
		{"interface degrades to string", reflect.TypeOf((*any)(nil)).Elem(), tool.TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.typ).Type)
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	first := Generate(reflect.TypeOf(weatherInput{}))
	second := Generate(reflect.TypeOf(weatherInput{}))
	assert.Equal(t, first, second)
}

func TestGenerate_PointerOptional(t *testing.T) {
	type input struct {
		Limit *int `json:"limit"`
	}
	s := Generate(reflect.TypeOf(input{}))
	assert.Equal(t, tool.TypeInteger, s.Properties["limit"].Type)
	assert.Empty(t, s.Required)
}
