package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/pkg/eventbus"
)

var lifecycleEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "siadin_lifecycle_events_total",
	Help: "Committed lifecycle operations, by entity and action.",
}, []string{"entity", "action"})

// RegisterLifecycleMetrics counts committed lifecycle operations. Handlers
// run on the post-commit path, so rolled-back operations are never counted.
func RegisterLifecycleMetrics(bus eventbus.EventBus) {
	bus.Subscribe(func(agency.CreatedEvent) { lifecycleEvents.WithLabelValues("agency", "created").Inc() })
	bus.Subscribe(func(agency.UpdatedEvent) { lifecycleEvents.WithLabelValues("agency", "updated").Inc() })
	bus.Subscribe(func(ev agency.DeletedEvent) { lifecycleEvents.WithLabelValues("agency", deleteAction(ev.Hard)).Inc() })
	bus.Subscribe(func(division.CreatedEvent) { lifecycleEvents.WithLabelValues("division", "created").Inc() })
	bus.Subscribe(func(division.UpdatedEvent) { lifecycleEvents.WithLabelValues("division", "updated").Inc() })
	bus.Subscribe(func(ev division.DeletedEvent) {
		lifecycleEvents.WithLabelValues("division", deleteAction(ev.Hard)).Inc()
	})
	bus.Subscribe(func(employee.CreatedEvent) { lifecycleEvents.WithLabelValues("employee", "created").Inc() })
	bus.Subscribe(func(employee.UpdatedEvent) { lifecycleEvents.WithLabelValues("employee", "updated").Inc() })
	bus.Subscribe(func(ev employee.DeletedEvent) {
		lifecycleEvents.WithLabelValues("employee", deleteAction(ev.Hard)).Inc()
	})
}

func deleteAction(hard bool) string {
	if hard {
		return "deleted"
	}
	return "deactivated"
}
