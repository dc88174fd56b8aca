//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package team

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

// PrintDo executes tasks like Do and prints a framed summary to stdout.
// Intended for demos and interactive use.
func (t *Team) PrintDo(ctx context.Context, tasks ...*task.Task) (*Result, error) {
	result, err := t.Do(ctx, tasks...)

	names := make([]string, len(t.agents))
	for i, a := range t.agents {
		names[i] = a.Name()
	}

	frame := strings.Repeat("=", 50)
	frameColor.Println(frame)
	headerColor.Printf("Team Mode: %s\n", t.mode)
	frameColor.Printf("Agents: %s\n", strings.Join(names, ", "))
	frameColor.Println(frame)
	if err != nil {
		errorColor.Printf("Error: %v\n", err)
		frameColor.Println(frame)
		return nil, err
	}
	frameColor.Println("Result:")
	color.New(color.FgWhite).Println(result.FinalResult)
	frameColor.Println(frame)
	return result, nil
}
