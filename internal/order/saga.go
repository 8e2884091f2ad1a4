package order

import (
	"context"

	"github.com/rs/zerolog/log"
)

// sagaStep is one unit of work in the order-creation saga. Compensate is nil
// for steps that have nothing to undo.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// runSaga executes steps in order. On the first failure it compensates the
// already-completed steps in reverse order and returns the step's error.
// Compensation is best effort: a failed undo is logged and skipped, there is
// no retry and no durable record of it.
func runSaga(ctx context.Context, steps []sagaStep) error {
	var completed []sagaStep

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			log.Warn().Err(err).Str("step", step.name).Msg("saga: step failed, compensating completed steps")
			compensate(ctx, completed)
			return err
		}
		completed = append(completed, step)
	}

	return nil
}

func compensate(ctx context.Context, steps []sagaStep) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			log.Error().Err(err).Str("step", step.name).Msg("saga: failed to compensate step")
		}
	}
}
