package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"shadertune/internal/check"
	"shadertune/internal/ui"
)

type checkOutcome struct {
	result check.Result
	err    error
}

func runCheckWithUI(ctx context.Context, title string, req *check.Request) (check.Result, error) {
	if req == nil {
		return check.Result{}, fmt.Errorf("missing check request")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan check.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = check.ChannelSink{Ch: events}
		res, err := check.Run(ctx, &reqCopy)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the model may quit before the batch ends; keep the sink from blocking
	cancel()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
