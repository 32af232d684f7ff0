package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"spendlens/internal/domain"
	"spendlens/internal/service"
)

const pollInterval = 200 * time.Millisecond

type result struct {
	analysis *domain.FinancialAnalysis
	err      error
}

// analyze runs the pipeline, mirrors the lifecycle steps onto a progress bar
// when progress is non-nil, and writes the analysis as indented JSON to out.
func analyze(ctx context.Context, svc service.AnalysisService, doc domain.InputDocument, out, progress io.Writer) error {
	done := make(chan result, 1)
	go func() {
		a, err := svc.Analyze(ctx, doc)
		done <- result{analysis: a, err: err}
	}()

	var bar *progressbar.ProgressBar
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var res result
wait:
	for {
		select {
		case res = <-done:
			break wait
		case <-ticker.C:
			if progress == nil {
				continue
			}
			state := svc.State()
			if state.Status != domain.StatusLoading {
				continue
			}
			if bar == nil {
				bar = newProgressBar(progress, state.TotalSteps)
			}
			bar.Describe(color.CyanString(state.StepLabel))
			_ = bar.Set(state.StepIndex + 1)
		}
	}

	if bar != nil {
		if res.err == nil {
			_ = bar.Finish()
		} else {
			_ = bar.Exit()
		}
		_, _ = fmt.Fprintln(progress)
	}
	if res.err != nil {
		return res.err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.analysis); err != nil {
		return fmt.Errorf("writing analysis: %w", err)
	}
	return nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.CyanString("Analyzing...")),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
