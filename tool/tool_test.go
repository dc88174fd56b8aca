//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name string
	fn   func(ctx context.Context, args []byte) (any, error)
}

func (f *fakeTool) Declaration() *Declaration {
	return &Declaration{Name: f.name, Description: "fake tool"}
}

func (f *fakeTool) Call(ctx context.Context, args []byte) (any, error) {
	return f.fn(ctx, args)
}

func TestInvoke_Success(t *testing.T) {
	ft := &fakeTool{name: "echo", fn: func(_ context.Context, args []byte) (any, error) {
		return string(args), nil
	}}

	res := Invoke(context.Background(), ft, []byte(`hello`))
	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.Value)
	assert.Empty(t, res.Error)
}

func TestInvoke_Error(t *testing.T) {
	ft := &fakeTool{name: "fail", fn: func(context.Context, []byte) (any, error) {
		return nil, errors.New("connection refused")
	}}

	res := Invoke(context.Background(), ft, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "connection refused", res.Error)
}

func TestInvoke_Panic(t *testing.T) {
	ft := &fakeTool{name: "panic", fn: func(context.Context, []byte) (any, error) {
		panic(errors.New("index out of range"))
	}}

	res := Invoke(context.Background(), ft, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "index out of range")
}

func TestResult_String(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"success value", Result{Success: true, Value: "42"}, "42"},
		{"success struct", Result{Success: true, Value: map[string]any{"sum": 5}}, `{"sum":5}`},
		{"failure", Result{Success: false, Error: "boom"}, "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.String())
		})
	}
}

func TestKit_Resolve(t *testing.T) {
	a := &fakeTool{name: "a"}
	b := &fakeTool{name: "b"}
	c := &fakeTool{name: "c"}
	kit := NewKit("letters", b, c)

	tools, err := Resolve([]any{a, kit, func() Toolbox { return NewKit("more", c) }})
	require.NoError(t, err)

	assert.Len(t, tools, 3)
	assert.Same(t, a, tools["a"])
	assert.Same(t, b, tools["b"])
	assert.Same(t, c, tools["c"])
}

func TestKit_ResolveUnsupported(t *testing.T) {
	_, err := Resolve([]any{42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported tool shape")
}

func TestKit_Lookup(t *testing.T) {
	a := &fakeTool{name: "a"}
	kit := NewKit("k", a)

	got, ok := kit.Lookup("a")
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = kit.Lookup("missing")
	assert.False(t, ok)
}

func TestFilterTools(t *testing.T) {
	a := &fakeTool{name: "a"}
	b := &fakeTool{name: "b"}
	kit := NewKit("k", a, b)

	only := FilterTools(kit, IncludeNames("a"))
	require.Len(t, only.Tools(), 1)
	assert.Equal(t, "a", only.Tools()[0].Declaration().Name)

	rest := FilterTools(kit, ExcludeNames("a"))
	require.Len(t, rest.Tools(), 1)
	assert.Equal(t, "b", rest.Tools()[0].Declaration().Name)
}
