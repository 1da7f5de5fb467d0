package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/football-stats/internal/config"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
)

type stopFunc struct {
	name string
	fn   func(context.Context) error
}

// Runtime holds the observability backends started for one process.
type Runtime struct {
	logger    *logging.Logger
	pprofAddr string
	stops     []stopFunc
}

// Setup starts tracing, continuous profiling and the pprof listener as cfg
// enables them. component tags the telemetry of each binary ("api",
// "ingest"). When one backend fails the ones already started are stopped.
func Setup(ctx context.Context, cfg config.Config, component string, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{logger: logger.Named("observability")}

	steps := []struct {
		name  string
		start func(config.Config, string, *logging.Logger) (func(context.Context) error, error)
	}{
		{name: "uptrace", start: startTracing},
		{name: "pyroscope", start: startProfiling},
		{name: "pprof", start: rt.startPprof},
	}
	for _, step := range steps {
		stop, err := step.start(cfg, component, rt.logger)
		if err != nil {
			_ = rt.Shutdown(ctx)
			return nil, fmt.Errorf("start %s: %w", step.name, err)
		}
		if stop != nil {
			rt.stops = append(rt.stops, stopFunc{name: step.name, fn: stop})
		}
	}
	return rt, nil
}

// PprofAddr is the bound pprof address, empty when pprof is disabled.
func (r *Runtime) PprofAddr() string {
	return r.pprofAddr
}

// Shutdown stops the backends in reverse start order.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(r.stops) - 1; i >= 0; i-- {
		stop := r.stops[i]
		if err := stop.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", stop.name, err))
		}
	}
	r.stops = nil
	return errors.Join(errs...)
}
