//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package agent

import (
	"context"
	"strings"

	"github.com/fatih/color"

	"github.com/ensembleworks/ensemble/task"
)

var (
	frameColor  = color.New(color.FgCyan)
	headerColor = color.New(color.FgCyan, color.Bold)
	errorColor  = color.New(color.FgRed, color.Bold)
)

// PrintDo executes a task like Do and prints a framed summary of the task
// and its result to stdout. Intended for demos and interactive use.
func (a *Agent) PrintDo(ctx context.Context, t *task.Task) (string, error) {
	frame := strings.Repeat("=", 50)
	frameColor.Println(frame)
	headerColor.Printf("Agent: %s\n", a.config.Name)
	frameColor.Printf("Task: %s\n", t.Description)
	frameColor.Println(frame)

	result, err := a.Do(ctx, t)
	if err != nil {
		errorColor.Printf("Error: %v\n", err)
		frameColor.Println(frame)
		return "", err
	}

	frameColor.Println("Result:")
	color.New(color.FgWhite).Println(result)
	frameColor.Println(frame)
	return result, nil
}
