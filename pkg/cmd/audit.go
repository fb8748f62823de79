package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-kerio/pkg/eventbus"
	"github.com/dukex/operion-kerio/pkg/events"
)

// SubscribeAuditLog writes every operation event on bus to logger and
// starts consuming. Consumption stops when ctx is done.
func SubscribeAuditLog(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	logger = logger.With("module", "audit")

	if err := bus.Handle(events.OperationExecutedEvent, func(ctx context.Context, event any) error {
		executed := event.(*events.OperationExecuted)

		logger.InfoContext(ctx, "Operation executed",
			append(operationAttrs(executed.BaseEvent, executed.Operation),
				"duration", executed.Duration)...)

		return nil
	}); err != nil {
		return err
	}

	if err := bus.Handle(events.OperationFailedEvent, func(ctx context.Context, event any) error {
		failed := event.(*events.OperationFailed)

		logger.WarnContext(ctx, "Operation failed",
			append(operationAttrs(failed.BaseEvent, failed.Operation),
				"kind", failed.Kind,
				"code", failed.Code,
				"error", failed.Error,
				"duration", failed.Duration)...)

		return nil
	}); err != nil {
		return err
	}

	return bus.Subscribe(ctx)
}

func operationAttrs(base events.BaseEvent, op events.Operation) []any {
	return []any{
		"event_id", base.ID,
		"workflow_id", base.WorkflowID,
		"execution_id", op.ExecutionID,
		"node_id", op.NodeID,
		"resource", op.Resource,
		"operation", op.Operation,
		"method", op.Method,
		"server", op.Server,
	}
}
