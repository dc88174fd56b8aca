//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package model

import (
	"context"
	"fmt"

	"github.com/ensembleworks/ensemble/log"
	"github.com/ensembleworks/ensemble/tool"
)

// ExecuteToolCalls runs each requested tool call against the given tool set
// and returns one tool result message per call, in request order.
//
// A tool that fails produces a result message carrying "Error: <message>" so
// the backend can react to the failure; only a call naming a tool that does
// not exist in the set is a hard error, wrapping tool.ErrUnknownTool.
func ExecuteToolCalls(ctx context.Context, tools map[string]tool.CallableTool, calls []ToolCall) ([]Message, error) {
	results := make([]Message, 0, len(calls))
	for _, call := range calls {
		name := call.Function.Name
		t, ok := tools[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", tool.ErrUnknownTool, name)
		}
		res := tool.Invoke(ctx, t, call.Function.Arguments)
		if !res.Success {
			log.Warnf("tool %s failed: %s", name, res.Error)
		}
		results = append(results, NewToolMessage(call.ID, name, res.String()))
	}
	return results, nil
}
