package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/models"
)

// PipelineResult aggregates the outcome of a full run.
type PipelineResult struct {
	Ingest    *IngestSummary
	RawLoad   *RawLoadSummary
	Transform *TransformSummary
	Report    *models.QualityReport
}

// Pipeline sequences ingestion, raw load, transform, and validation. Each
// step commits independently; a failure leaves prior steps' writes in place
// and the run is re-runnable to convergence.
type Pipeline struct {
	ingest    IngestService
	rawLoad   RawLoadService
	transform TransformService
	quality   QualityService
	logger    *zap.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	ingest IngestService,
	rawLoad RawLoadService,
	transform TransformService,
	quality QualityService,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		ingest:    ingest,
		rawLoad:   rawLoad,
		transform: transform,
		quality:   quality,
		logger:    logger.Named("pipeline"),
	}
}

// Run executes every step in order and returns the aggregated result. The
// quality report is returned even when hard checks fail; translating that
// into an exit status is the caller's concern.
func (p *Pipeline) Run(ctx context.Context) (*PipelineResult, error) {
	result := &PipelineResult{}
	var err error

	p.logger.Info("Starting full pipeline run")

	if result.Ingest, err = p.ingest.Run(ctx); err != nil {
		return result, fmt.Errorf("ingest step failed: %w", err)
	}
	if result.RawLoad, err = p.rawLoad.Run(ctx); err != nil {
		return result, fmt.Errorf("raw load step failed: %w", err)
	}
	if result.Transform, err = p.transform.Run(ctx); err != nil {
		return result, fmt.Errorf("transform step failed: %w", err)
	}
	if result.Report, err = p.quality.Run(ctx); err != nil {
		return result, fmt.Errorf("quality step failed: %w", err)
	}

	p.logger.Info("Pipeline run complete",
		zap.Int("characters_ingested", result.Ingest.Characters),
		zap.Int("episodes_ingested", result.Ingest.Episodes),
		zap.Bool("all_hard_checks_passed", result.Report.AllHardChecksPassed()))

	return result, nil
}
