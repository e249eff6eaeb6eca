package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Association actions used as the "action" metric attribute.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// AssociationMetrics counts changes to the order/product association.
type AssociationMetrics struct {
	changes   *Counter
	conflicts *Counter
}

// NewAssociationMetrics registers the association counters on meter.
func NewAssociationMetrics(meter metric.Meter) (*AssociationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	changes, err := NewCounter(meter,
		"order_product_changes_total",
		"Products added to or removed from orders",
		"{changes}",
	)
	if err != nil {
		return nil, err
	}

	conflicts, err := NewCounter(meter,
		"order_product_conflicts_total",
		"Association changes rejected because the pair already existed or was missing",
		"{conflicts}",
	)
	if err != nil {
		return nil, err
	}

	return &AssociationMetrics{changes: changes, conflicts: conflicts}, nil
}

// RecordChange counts a successful add or remove.
func (m *AssociationMetrics) RecordChange(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.changes.Inc(ctx, AttrAction.String(action))
}

// RecordConflict counts a rejected add or remove.
func (m *AssociationMetrics) RecordConflict(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.conflicts.Inc(ctx, AttrAction.String(action))
}
