package sync

import (
	"context"
	"errors"
	"net/http"

	"go-punchsync/internal/shared/apperror"

	"go.uber.org/zap"
)

// RunResult reports one source's outcome. Exactly one of Stats or Error is
// set: a connectivity failure (or concurrent-run rejection) produces no
// stats because nothing was written.
type RunResult struct {
	Source string     `json:"source"`
	Stats  *SyncStats `json:"stats,omitempty"`
	Error  *RunError  `json:"error,omitempty"`
}

type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Failed reports whether the run should count as failed for exit-code and
// alerting purposes: connectivity trouble or any per-group errors.
func (r RunResult) Failed() bool {
	if r.Error != nil {
		return true
	}
	return r.Stats != nil && r.Stats.HasErrors()
}

//go:generate mockgen -source=sync_service.go -destination=mock/sync_service_mock.go -package=mock
type Service interface {
	Run(ctx context.Context, sourceName string, opts SyncOptions) ([]RunResult, error)
	Watermarks(ctx context.Context) ([]SyncWatermark, error)
	TestConnections(ctx context.Context) map[string]bool
}

type service struct {
	runners    []*Orchestrator
	watermarks WatermarkRepository
	logger     *zap.Logger
}

func NewService(runners []*Orchestrator, watermarks WatermarkRepository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.L()
	}
	return &service{
		runners:    runners,
		watermarks: watermarks,
		logger:     logger.Named("sync.service"),
	}
}

// Run executes the pipeline for one source, or for every registered source
// when sourceName is empty or "all". Per-source failures land inside the
// results; only an unknown source name is an error.
func (s *service) Run(ctx context.Context, sourceName string, opts SyncOptions) ([]RunResult, error) {
	runners := s.runners
	if sourceName != "" && sourceName != "all" {
		runner := s.findRunner(sourceName)
		if runner == nil {
			return nil, apperror.New(
				apperror.CodeInvalidInput,
				"Unknown sync source: "+sourceName,
				http.StatusBadRequest,
			)
		}
		runners = []*Orchestrator{runner}
	}

	results := make([]RunResult, 0, len(runners))
	for _, runner := range runners {
		stats, err := runner.Sync(ctx, opts)
		if err != nil {
			results = append(results, RunResult{
				Source: runner.Source(),
				Error:  toRunError(err),
			})
			continue
		}
		results = append(results, RunResult{
			Source: runner.Source(),
			Stats:  &stats,
		})
	}
	return results, nil
}

func (s *service) Watermarks(ctx context.Context) ([]SyncWatermark, error) {
	return s.watermarks.List(ctx)
}

func (s *service) TestConnections(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(s.runners))
	for _, runner := range s.runners {
		out[runner.Source()] = runner.TestConnection(ctx)
	}
	return out
}

func (s *service) findRunner(sourceName string) *Orchestrator {
	for _, runner := range s.runners {
		if runner.Source() == sourceName {
			return runner
		}
	}
	return nil
}

func toRunError(err error) *RunError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return &RunError{Code: appErr.Code, Message: appErr.Message}
	}
	return &RunError{Code: apperror.CodeInternalError, Message: err.Error()}
}
