package effects

import (
	"context"
	"time"

	"go.uber.org/zap"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// Audit logs every description exec runs at Debug, and every failure at Warn.
// Interpreters stay silent; auditing is a decision of whoever wires them.
func Audit(exec effectmodel.Executor, logger *zap.Logger) effectmodel.Executor {
	return effectmodel.ExecutorFunc(func(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
		start := time.Now()
		o := exec.Execute(ctx, d)

		fields := []zap.Field{
			zap.String("tag", string(tagOf(d))),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err, failed := o.Err(); failed {
			logger.Warn("effect failed", append(fields,
				zap.String("kind", string(err.Kind)),
				zap.Bool("retryable", err.Retryable()),
				zap.Error(err),
			)...)
			return o
		}
		logger.Debug("effect executed", fields...)
		return o
	})
}

func tagOf(d effectmodel.Description) effectmodel.Tag {
	if d == nil {
		return ""
	}
	return d.Tag()
}
