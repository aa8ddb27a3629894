package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/models"
)

type stubIngest struct {
	err   error
	calls int
}

func (s *stubIngest) Run(_ context.Context) (*IngestSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &IngestSummary{Characters: 2, Episodes: 1}, nil
}

type stubRawLoad struct {
	err   error
	calls int
}

func (s *stubRawLoad) Run(_ context.Context) (*RawLoadSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &RawLoadSummary{CharactersLoaded: 2, EpisodesLoaded: 1}, nil
}

type stubTransform struct {
	err   error
	calls int
}

func (s *stubTransform) Run(_ context.Context) (*TransformSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &TransformSummary{}, nil
}

func (s *stubTransform) TransformCharacters(_ context.Context, _ []models.RawRecord) (models.UpsertResult, error) {
	return models.UpsertResult{}, nil
}

func (s *stubTransform) TransformEpisodes(_ context.Context, _ []models.RawRecord) (models.UpsertResult, error) {
	return models.UpsertResult{}, nil
}

func (s *stubTransform) ExplodeBridge(_ context.Context, _ []models.RawRecord) (models.InsertResult, error) {
	return models.InsertResult{}, nil
}

type stubQuality struct {
	calls int
}

func (s *stubQuality) Run(_ context.Context) (*models.QualityReport, error) {
	s.calls++
	return &models.QualityReport{Results: []models.CheckResult{
		{Name: "PK_CHARACTERS_UNIQUE", Severity: models.SeverityHard, Status: models.CheckStatusPass},
	}}, nil
}

func TestPipelineRun_SequencesAllSteps(t *testing.T) {
	ingest := &stubIngest{}
	rawLoad := &stubRawLoad{}
	transform := &stubTransform{}
	quality := &stubQuality{}

	p := NewPipeline(ingest, rawLoad, transform, quality, zap.NewNop())
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, ingest.calls)
	assert.Equal(t, 1, rawLoad.calls)
	assert.Equal(t, 1, transform.calls)
	assert.Equal(t, 1, quality.calls)
	assert.True(t, result.Report.AllHardChecksPassed())
}

func TestPipelineRun_StepFailureStopsRun(t *testing.T) {
	ingest := &stubIngest{}
	rawLoad := &stubRawLoad{err: errors.New("db down")}
	transform := &stubTransform{}
	quality := &stubQuality{}

	p := NewPipeline(ingest, rawLoad, transform, quality, zap.NewNop())
	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw load step failed")
	assert.Equal(t, 0, transform.calls, "later steps do not run after a failure")
	assert.Equal(t, 0, quality.calls)
}
