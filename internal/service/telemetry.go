package service

import (
	"go.uber.org/zap"

	"github.com/tejinder0007/real-estate-frontend/internal/observability/metrics"
)

// Telemetry groups the optional logging and metrics sinks shared by services.
type Telemetry struct {
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

func (t Telemetry) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}
