package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// recordStep is a test step that records whether it ran.
type recordStep struct {
	name string
	ran  bool
	err  error
}

func (s *recordStep) Do(_ context.Context, _ *model.AnalysisReport) error {
	s.ran = true
	return s.err
}

func (s *recordStep) Name() string {
	return s.name
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		first := &recordStep{name: "first"}
		second := &recordStep{name: "second"}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(first, second)

		report := model.NewAnalysisReport("test")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if !first.ran || !second.ran {
			t.Error("not all steps ran")
		}
		if len(report.PerformedSteps) != 2 || report.PerformedSteps[0] != "first" {
			t.Errorf("PerformedSteps = %v", report.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		failing := &recordStep{name: "failing", err: errors.New("boom")}
		after := &recordStep{name: "after"}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(failing, after)

		report := model.NewAnalysisReport("test")
		if err := p.Execute(context.Background(), report); err == nil {
			t.Fatal("expected error")
		}
		if after.ran {
			t.Error("step after failure should not run")
		}
		if report.ErrorMessage != "boom" {
			t.Errorf("ErrorMessage = %q", report.ErrorMessage)
		}
	})

	t.Run("continue on error runs all steps", func(t *testing.T) {
		t.Parallel()

		failing := &recordStep{name: "failing", err: errors.New("boom")}
		after := &recordStep{name: "after"}

		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddSteps(failing, after)

		report := model.NewAnalysisReport("test")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !after.ran {
			t.Error("later step should run with continueOnError")
		}
	})

	t.Run("cancelled context stops pipeline", func(t *testing.T) {
		t.Parallel()

		step := &recordStep{name: "never"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := model.NewAnalysisReport("test")
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if step.ran {
			t.Error("step ran after cancellation")
		}
	})
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(quietLogger()))
	p.AddSteps(&recordStep{name: "a"}, &recordStep{name: "b"})

	if p.StepCount() != 2 {
		t.Errorf("StepCount() = %d", p.StepCount())
	}
	names := p.StepNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("StepNames() = %v", names)
	}
}
