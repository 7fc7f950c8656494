package metrics

import (
	"context"

	"github.com/aretw0/ripple/pkg/domain"
)

// Hooks returns lifecycle hooks that record traversal metrics.
func Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(context.Context, *domain.TraversalEvent) {
			TraversalsTotal.WithLabelValues(OutcomeStarted).Inc()
		},
		OnVisit: func(context.Context, *domain.TraversalEvent) {
			NodesVisitedTotal.Inc()
		},
		OnEnqueue: func(context.Context, *domain.TraversalEvent) {
			NodesEnqueuedTotal.Inc()
		},
		OnComplete: func(_ context.Context, e *domain.TraversalEvent) {
			TraversalsTotal.WithLabelValues(OutcomeCompleted).Inc()
			TraversalSize.Observe(float64(e.Visited))
		},
		OnReset: func(_ context.Context, e *domain.TraversalEvent) {
			TraversalsTotal.WithLabelValues(OutcomeReset).Inc()
		},
	}
}
