// Package analysis composes the table operations into the three named
// analyses of the disparity report. Each analysis is a pipeline of
// stages; a stage takes a table and returns a new one, and any stage
// failure aborts the pipeline with the stage name attached.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"hmdacli/internal/frame"
	"hmdacli/internal/infrastructure"
)

// StageFunc transforms one table into the next.
type StageFunc func(ctx context.Context, t *frame.Table) (*frame.Table, error)

// Stage is a named pipeline step.
type Stage struct {
	Name string
	Run  StageFunc
}

// Pipeline runs a fixed sequence of stages over a table.
type Pipeline struct {
	name   string
	stages []Stage
	logger *slog.Logger
}

// NewPipeline creates a pipeline. A nil logger falls back to the
// default logger.
func NewPipeline(name string, logger *slog.Logger, stages ...Stage) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		name:   name,
		stages: stages,
		logger: logger.With(slog.String("pipeline", name)),
	}
}

// Run executes the stages in order. Each stage gets its own trace span
// and a log line with the row counts flowing through it.
func (p *Pipeline) Run(ctx context.Context, t *frame.Table) (*frame.Table, error) {
	tracer := otel.Tracer(infrastructure.TracerName)

	ctx, span := tracer.Start(ctx, "pipeline."+p.name)
	defer span.End()

	for _, stage := range p.stages {
		stageCtx, stageSpan := tracer.Start(ctx, "stage."+stage.Name)
		stageSpan.SetAttributes(attribute.Int("rows.in", t.NumRows()))

		rowsIn := t.NumRows()
		out, err := stage.Run(stageCtx, t)
		if err != nil {
			stageSpan.SetStatus(codes.Error, err.Error())
			stageSpan.RecordError(err)
			stageSpan.End()
			return nil, fmt.Errorf("pipeline %s, stage %s: %w", p.name, stage.Name, err)
		}

		stageSpan.SetAttributes(attribute.Int("rows.out", out.NumRows()))
		stageSpan.End()

		p.logger.InfoContext(stageCtx, "stage complete",
			slog.String("stage", stage.Name),
			slog.Int("rows_in", rowsIn),
			slog.Int("rows_out", out.NumRows()))
		t = out
	}

	return t, nil
}
