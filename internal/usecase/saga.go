package usecase

import (
	"context"

	"github.com/rs/zerolog"
)

// undoLog records compensating actions for the mutating steps of a
// workflow. When a later step fails the recorded actions run in reverse
// order, so a failed registration never leaves a half-created client
// behind. Undo failures are logged and do not stop the remaining undos.
type undoLog struct {
	steps []func(context.Context) error
}

func (l *undoLog) push(step func(context.Context) error) {
	l.steps = append(l.steps, step)
}

func (l *undoLog) rollback(ctx context.Context, logger *zerolog.Logger) {
	for i := len(l.steps) - 1; i >= 0; i-- {
		if err := l.steps[i](ctx); err != nil {
			logger.Error().Err(err).Msg("failed to undo registration step")
		}
	}
	l.steps = nil
}
