package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/covergate/internal/domain"
)

type Service struct {
	ReportLoader ReportLoader
	Reporter     Reporter
	Badge        BadgeWriter
	Logger       *zap.Logger
	Out          io.Writer
	Now          func() time.Time
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// LoadCoverage reads the report at path and builds its coverage map.
func (s *Service) LoadCoverage(path string) (domain.CoverageMap, error) {
	report, err := s.ReportLoader.Load(path)
	if err != nil {
		return domain.CoverageMap{}, err
	}
	assemblies := domain.ExtractAssemblies(report)
	s.logger().Debug("report loaded", zap.String("path", path), zap.Int("assemblies", len(assemblies)))
	coverage, err := domain.NewCoverageMap(assemblies)
	if err != nil {
		return domain.CoverageMap{}, fmt.Errorf("%s: %w", path, err)
	}
	return coverage, nil
}

// GateResult loads the configured report and evaluates the policy against it.
func (s *Service) GateResult(ctx context.Context, opts GateOptions) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	coverage, err := s.LoadCoverage(opts.Config.ReportPath)
	if err != nil {
		return domain.Result{}, err
	}

	result := domain.Evaluate(coverage, opts.Config.Policy())
	s.logger().Debug("policy evaluated",
		zap.Float64("target", result.Target),
		zap.Int("units", len(result.Units)),
		zap.Strings("failing", result.Failing))

	if opts.HistoryStore != nil {
		history, err := opts.HistoryStore.Load()
		if err != nil {
			s.logger().Warn("history unavailable, skipping deltas", zap.Error(err))
		} else {
			result = result.WithDeltas(history)
		}
	}
	return result, nil
}

// Gate evaluates the policy, writes diagnostics, the badge and history.
// It returns ErrGateFailed when any unit is in the failing set. History is
// best effort and never changes the verdict.
func (s *Service) Gate(ctx context.Context, opts GateOptions) error {
	_, err := s.gate(ctx, opts)
	return err
}

func (s *Service) gate(ctx context.Context, opts GateOptions) (domain.Result, error) {
	result, err := s.GateResult(ctx, opts)
	if err != nil {
		return domain.Result{}, err
	}
	if err := s.Reporter.Write(s.Out, result, opts.Output); err != nil {
		return result, err
	}
	if opts.BadgePath != "" && s.Badge != nil {
		if err := s.Badge.WriteBadge(opts.BadgePath, result); err != nil {
			return result, fmt.Errorf("write badge: %w", err)
		}
	}
	if opts.HistoryStore != nil {
		entry := domain.NewHistoryEntry(uuid.NewString(), s.now(), result)
		if err := opts.HistoryStore.Append(entry); err != nil {
			s.logger().Warn("history not recorded", zap.Error(err))
		} else {
			s.logger().Debug("history recorded", zap.String("id", entry.ID))
		}
	}
	if !result.Passed {
		return result, ErrGateFailed
	}
	return result, nil
}

// Watch gates once, then again every time watcher reports a change,
// until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, opts GateOptions, watcher FileWatcher, callback WatchCallback) error {
	run := 1
	result, err := s.gate(ctx, opts)
	if callback != nil {
		callback(run, result, err)
	}

	events := watcher.Events(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("watcher closed")
			}
			run++
			s.logger().Debug("report changed", zap.Int("run", run))
			result, err := s.gate(ctx, opts)
			if callback != nil {
				callback(run, result, err)
			}
		}
	}
}
