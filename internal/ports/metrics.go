package ports

// Metrics receives the few gauges and counters the lifecycle core exposes.
type Metrics interface {
	SetRank(rank int)
	SetFleetSize(size int)
	SetTargetHour(hour int)
	SetConnectionLossEpisodes(count int)
	IncShutdownTrigger(reason string)
}

// NopMetrics is used when observability is disabled.
type NopMetrics struct{}

func (NopMetrics) SetRank(int)                   {}
func (NopMetrics) SetFleetSize(int)              {}
func (NopMetrics) SetTargetHour(int)             {}
func (NopMetrics) SetConnectionLossEpisodes(int) {}
func (NopMetrics) IncShutdownTrigger(string)     {}
