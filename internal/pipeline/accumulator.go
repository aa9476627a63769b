package pipeline

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/message"
	"github.com/sanspareilsmyn/annualtables/internal/report"
	"github.com/sanspareilsmyn/annualtables/internal/source"
	"github.com/sanspareilsmyn/annualtables/internal/units"
)

// Report is the rendered outcome of one finished run.
type Report struct {
	Grids     []report.Grid
	TOC       []report.TOCEntry
	Style     units.Style
	Timesteps int64
	Stats     report.Stats
}

// Accumulator is the single goroutine that owns the value store and the table
// registry. It applies every timestep frame in arrival order and renders once,
// on an end frame or when its input runs dry.
type Accumulator struct {
	store    *source.Store
	registry *report.Registry
	style    units.Style
	input    <-chan message.Frame
	output   chan<- Report
	logger   *zap.Logger

	timesteps atomic.Int64
	// unknown remembers (variable/key) pairs already warned about.
	unknown map[string]struct{}
}

// NewAccumulator creates an accumulator over a bound registry.
func NewAccumulator(store *source.Store, registry *report.Registry, style units.Style,
	input <-chan message.Frame, output chan<- Report, logger *zap.Logger) *Accumulator {
	logger.Info("Accumulator initialized",
		zap.Int("tables", len(registry.Tables())),
		zap.Stringer("unit_style", style),
	)
	return &Accumulator{
		store:    store,
		registry: registry,
		style:    style,
		input:    input,
		output:   output,
		logger:   logger,
		unknown:  make(map[string]struct{}),
	}
}

// Timesteps returns the number of timesteps applied so far. Safe for concurrent use.
func (a *Accumulator) Timesteps() int64 { return a.timesteps.Load() }

// Run applies frames until the run ends. A cancelled run returns ctx.Err() and
// produces no report.
func (a *Accumulator) Run(ctx context.Context) error {
	sugar := a.logger.Sugar()
	sugar.Info("Starting accumulator loop...")
	defer sugar.Info("Accumulator loop stopped.")

	for {
		select {
		case f, ok := <-a.input:
			if !ok {
				if ctx.Err() != nil {
					sugar.Warnw("Input closed after the run was aborted, discarding partial run",
						zap.Int64("timesteps", a.Timesteps()),
					)
					return ctx.Err()
				}
				sugar.Info("Accumulator input closed, finishing run")
				return a.finish(ctx)
			}
			if f.Type == message.FrameEnd {
				framesReceived.WithLabelValues(string(message.FrameEnd)).Inc()
				sugar.Info("End frame received, finishing run")
				return a.finish(ctx)
			}
			a.apply(f)

		case <-ctx.Done():
			sugar.Warnw("Context cancelled, discarding partial run",
				zap.Int64("timesteps", a.Timesteps()),
			)
			return ctx.Err()
		}
	}
}

// apply stores the frame's values and folds one timestep into every table. A
// (variable, key) the frame omits keeps its last reported value.
func (a *Accumulator) apply(f message.Frame) {
	framesReceived.WithLabelValues(string(message.FrameTimestep)).Inc()

	samples, skipped := f.Samples()
	if len(skipped) > 0 {
		samplesSkipped.WithLabelValues("non_numeric").Add(float64(len(skipped)))
		a.logger.Debug("Non-numeric values skipped", zap.Strings("values", skipped))
	}
	for _, s := range samples {
		if err := a.store.Set(s.Variable, s.Key, s.Value); err != nil {
			samplesSkipped.WithLabelValues("unknown").Inc()
			label := s.Variable + "/" + s.Key
			if _, seen := a.unknown[label]; !seen {
				a.unknown[label] = struct{}{}
				a.logger.Warn("Value for undeclared variable or key ignored",
					zap.String("variable", s.Variable),
					zap.String("key", s.Key),
					zap.Error(err),
				)
			}
		}
	}

	kind := f.StepKind()
	a.registry.Accumulate(f.Clock().Step(kind), a.store)
	a.timesteps.Add(1)
	timestepsAccumulated.WithLabelValues(kind.String()).Inc()
}

// finish renders the run and hands the report downstream. A run that saw no
// timesteps has nothing to report.
func (a *Accumulator) finish(ctx context.Context) error {
	n := a.Timesteps()
	if n == 0 {
		a.logger.Warn("No timestep data received, skipping report generation")
		return nil
	}

	stats := a.registry.Stats()
	engineUpdates.WithLabelValues("samples").Set(float64(stats.Samples))
	engineUpdates.WithLabelValues("extreme").Set(float64(stats.ExtremeUpdates))
	engineUpdates.WithLabelValues("hours").Set(float64(stats.HoursUpdates))
	engineUpdates.WithLabelValues("scan").Set(float64(stats.ScanWrites))

	r := Report{
		Grids:     a.registry.Render(a.style),
		TOC:       a.registry.TableOfContents(),
		Style:     a.style,
		Timesteps: n,
		Stats:     stats,
	}
	a.logger.Info("Run rendered",
		zap.Int64("timesteps", n),
		zap.Int("tables", len(r.Grids)),
		zap.Uint64("extreme_updates", stats.ExtremeUpdates),
		zap.Uint64("hours_updates", stats.HoursUpdates),
	)

	select {
	case a.output <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
