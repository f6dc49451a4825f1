package recurring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
)

type ServiceAPI interface {
	MaterializeDueObligations(ctx context.Context, userID int64, now time.Time) ([]MaterializedResult, error)
	ProcessEMIs(ctx context.Context, userID int64, now time.Time) ([]MaterializedResult, error)
	ProcessSIPs(ctx context.Context, userID int64, now time.Time) ([]MaterializedResult, error)
	ProcessForUser(ctx context.Context, userID int64, now time.Time) error
	ProcessAll(ctx context.Context, now time.Time) (int, error)
}

type Service struct {
	rules        RuleRepository
	evaluator    *Evaluator
	materializer *Materializer
	location     *time.Location
	pool         PoolConfig
	logger       *slog.Logger
}

func NewService(rules RuleRepository, evaluator *Evaluator, materializer *Materializer, loc *time.Location, pool PoolConfig, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		rules:        rules,
		evaluator:    evaluator,
		materializer: materializer,
		location:     loc,
		pool:         pool,
		logger:       logger,
	}
}

// MaterializeDueObligations books every loan and SIP due on now. Calling it
// again in the same month writes nothing.
func (s *Service) MaterializeDueObligations(ctx context.Context, userID int64, now time.Time) ([]MaterializedResult, error) {
	return s.process(ctx, userID, now, "", TriggerExplicit)
}

func (s *Service) ProcessEMIs(ctx context.Context, userID int64, now time.Time) ([]MaterializedResult, error) {
	return s.process(ctx, userID, now, TypeLoan, TriggerExplicit)
}

func (s *Service) ProcessSIPs(ctx context.Context, userID int64, now time.Time) ([]MaterializedResult, error) {
	return s.process(ctx, userID, now, TypeSIP, TriggerExplicit)
}

// ProcessForUser is the login hook.
func (s *Service) ProcessForUser(ctx context.Context, userID int64, now time.Time) error {
	results, err := s.process(ctx, userID, now, "", TriggerLogin)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		s.logger.Info("materialized obligations on login", "user_id", userID, "count", len(results))
	}
	return nil
}

// ProcessAll sweeps every user with a rule due today through the worker pool
// and returns how many expenses were created. A failing user is logged and
// does not stop the sweep.
func (s *Service) ProcessAll(ctx context.Context, now time.Time) (int, error) {
	now = now.In(s.location)

	users, err := s.rules.UsersWithDueRules(ctx, now.Day())
	if err != nil {
		s.logger.Error("failed to list users with due rules", "error", err, "day", now.Day())
		return 0, errors.NewInternalError("failed to list users with due rules", err)
	}
	if len(users) == 0 {
		return 0, nil
	}

	var created, failed atomic.Int64
	pool := NewPool(ctx, s.pool, func(jobCtx context.Context, job Job) {
		results, err := s.process(jobCtx, job.UserID, job.Now, "", TriggerWorker)
		created.Add(int64(len(results)))
		if err != nil {
			failed.Add(1)
			s.logger.Error("recurring sweep failed for user", "user_id", job.UserID, "error", err)
		}
	}, s.logger)

	for _, userID := range users {
		if err := pool.Submit(ctx, Job{UserID: userID, Now: now}); err != nil {
			pool.Shutdown()
			return int(created.Load()), err
		}
	}
	pool.Shutdown()

	s.logger.Info("recurring sweep finished",
		"users", len(users),
		"created", created.Load(),
		"failed_users", failed.Load(),
		"day", now.Day())
	return int(created.Load()), nil
}

func (s *Service) process(ctx context.Context, userID int64, now time.Time, only, trigger string) ([]MaterializedResult, error) {
	now = now.In(s.location)

	due, err := s.evaluator.DueRules(ctx, userID, now)
	if err != nil {
		s.logger.Error("failed to evaluate due rules", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to evaluate recurring rules", err)
	}
	if only != "" {
		due = due.Only(only)
	}
	if due.Len() == 0 {
		return []MaterializedResult{}, nil
	}

	results, err := s.materializer.Materialize(ctx, userID, now, due, Options{Trigger: trigger})
	if err != nil {
		s.logger.Error("failed to materialize obligations", "error", err, "user_id", userID, "created", len(results))
		return results, errors.NewInternalError("failed to materialize obligations", err)
	}
	return results, nil
}
