//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensembleworks/ensemble/model"
	"github.com/ensembleworks/ensemble/tool"
	"github.com/ensembleworks/ensemble/tool/function"
)

func TestNew_MissingAPIKey(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	_, err := New("claude-sonnet-4-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), apiKeyEnv)
}

func TestInfo(t *testing.T) {
	m, err := New("claude-sonnet-4-5", WithAPIKey("test-key"))
	require.NoError(t, err)
	info := m.Info()
	assert.Equal(t, "claude-sonnet-4-5", info.Name)
	assert.Equal(t, "anthropic", info.Provider)
}

func messageJSON(content []map[string]any, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-sonnet-4-5",
		"content":     content,
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 12, "output_tokens": 6},
	}
}

func TestConverse_PlainText(t *testing.T) {
	var calls int
	var lastBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &lastBody))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(messageJSON(
			[]map[string]any{{"type": "text", "text": "hello"}}, "end_turn")))
	}))
	defer server.Close()

	m, err := New("claude-sonnet-4-5", WithAPIKey("test-key"), WithBaseURL(server.URL))
	require.NoError(t, err)

	rsp, err := m.Converse(context.Background(), &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage("You are terse."),
			model.NewUserMessage("Say hello."),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "hello", rsp.Text())
	assert.Equal(t, "end_turn", rsp.Choices[0].FinishReason)
	require.NotNil(t, rsp.Usage)
	assert.Equal(t, 18, rsp.Usage.TotalTokens)

	// System text rides out of band, not as a message turn.
	system := lastBody["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "You are terse.", system[0].(map[string]any)["text"])
	messages := lastBody["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])

	// No tools bound means no tools field on the wire.
	_, hasTools := lastBody["tools"]
	assert.False(t, hasTools)

	// max_tokens is mandatory and defaults when unset.
	assert.Equal(t, float64(defaultMaxTokens), lastBody["max_tokens"])
}

func TestConverse_ToolRound(t *testing.T) {
	var bodies []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var parsed map[string]any
		require.NoError(t, json.Unmarshal(body, &parsed))
		bodies = append(bodies, parsed)

		w.Header().Set("Content-Type", "application/json")
		if len(bodies) == 1 {
			require.NoError(t, json.NewEncoder(w).Encode(messageJSON([]map[string]any{
				{"type": "text", "text": "Checking the weather."},
				{"type": "tool_use", "id": "toolu_1", "name": "get_weather", "input": map[string]any{"city": "Oslo"}},
			}, "tool_use")))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(messageJSON(
			[]map[string]any{{"type": "text", "text": "It is sunny in Oslo."}}, "end_turn")))
	}))
	defer server.Close()

	weather := function.New(func(_ context.Context, in struct {
		City string `json:"city"`
	}) (string, error) {
		return fmt.Sprintf("sunny in %s", in.City), nil
	}, function.WithName("get_weather"), function.WithDescription("Current weather for a city."))

	m, err := New("claude-sonnet-4-5", WithAPIKey("test-key"), WithBaseURL(server.URL))
	require.NoError(t, err)

	rsp, err := m.Converse(context.Background(), &model.Request{
		Messages: []model.Message{model.NewUserMessage("Weather in Oslo?")},
		Tools:    map[string]tool.CallableTool{"get_weather": weather},
	})
	require.NoError(t, err)

	// Exactly one tool-resolution round: two backend calls total.
	require.Len(t, bodies, 2)
	assert.Equal(t, "It is sunny in Oslo.", rsp.Text())

	// First request declares the tool with name/description/input_schema.
	tools := bodies[0]["tools"].([]any)
	require.Len(t, tools, 1)
	decl := tools[0].(map[string]any)
	assert.Equal(t, "get_weather", decl["name"])
	schema := decl["input_schema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema["properties"].(map[string]any), "city")

	// Second request ends with assistant tool_use echoed then a single
	// user turn of tool_result blocks.
	messages := bodies[1]["messages"].([]any)
	require.Len(t, messages, 3)
	assistant := messages[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	results := messages[2].(map[string]any)
	assert.Equal(t, "user", results["role"])
	block := results["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "tool_result", block["type"])
	assert.Equal(t, "toolu_1", block["tool_use_id"])

	require.NotNil(t, rsp.Usage)
	assert.Equal(t, 36, rsp.Usage.TotalTokens)
}

func TestConverse_UnknownToolName(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(messageJSON([]map[string]any{
			{"type": "tool_use", "id": "toolu_1", "name": "ghost", "input": map[string]any{}},
		}, "tool_use")))
	}))
	defer server.Close()

	known := function.New(func(context.Context, struct{}) (string, error) {
		return "ok", nil
	}, function.WithName("known"), function.WithDescription("Known tool."))

	m, err := New("claude-sonnet-4-5", WithAPIKey("test-key"), WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = m.Converse(context.Background(), &model.Request{
		Messages: []model.Message{model.NewUserMessage("go")},
		Tools:    map[string]tool.CallableTool{"known": known},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, tool.ErrUnknownTool)
	assert.Equal(t, 1, calls)
}

func TestConvertTools_SortedOrder(t *testing.T) {
	mk := func(name string) tool.CallableTool {
		return function.New(func(context.Context, struct{}) (string, error) {
			return "", nil
		}, function.WithName(name), function.WithDescription(name))
	}
	params := convertTools(map[string]tool.CallableTool{
		"zeta": mk("zeta"), "alpha": mk("alpha"), "mid": mk("mid"),
	})
	require.Len(t, params, 3)
	assert.Equal(t, "alpha", params[0].OfTool.Name)
	assert.Equal(t, "mid", params[1].OfTool.Name)
	assert.Equal(t, "zeta", params[2].OfTool.Name)
}
