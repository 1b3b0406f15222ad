package outbound

// LifecycleMetrics receives lifecycle transition counts.
type LifecycleMetrics interface {
	ObserveTransition(entityType, action string)
	ObserveCascadeFailure(entityType, action string)
}

type NoopLifecycleMetrics struct{}

func (NoopLifecycleMetrics) ObserveTransition(string, string)     {}
func (NoopLifecycleMetrics) ObserveCascadeFailure(string, string) {}
