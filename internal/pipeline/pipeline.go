// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/config"
	"github.com/sanspareilsmyn/annualtables/internal/message"
	"github.com/sanspareilsmyn/annualtables/internal/output"
	"github.com/sanspareilsmyn/annualtables/internal/report"
	"github.com/sanspareilsmyn/annualtables/internal/source"
)

// Pipeline orchestrates the stages of one run: input source, parsing,
// accumulation and publishing.
type Pipeline struct {
	cfg         *config.Config
	source      Source
	accumulator *Accumulator
	publisher   *Publisher
	logger      *zap.Logger

	rawFrames chan []byte
	frames    chan message.Frame
	reports   chan Report
}

// New binds the registry to the store and wires up the pipeline stages.
func New(cfg *config.Config, store *source.Store, registry *report.Registry, logger *zap.Logger) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	if err := output.Validate(cfg.Report.Formats); err != nil {
		return nil, err
	}
	if err := registry.Bind(store); err != nil {
		initLogger.Error("Failed to bind tables", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrBindFailed, err)
	}

	const channelBufferSize = 100
	rawFrames := make(chan []byte, channelBufferSize)
	frames := make(chan message.Frame, channelBufferSize)
	reports := make(chan Report, 1)
	initLogger.Debug("Channels created", zap.Int("bufferSize", channelBufferSize))

	var src Source
	switch cfg.Input.Mode {
	case config.InputModeFile:
		src = NewReplayer(cfg.Input.Path, rawFrames, logger.Named("replay"))
	case config.InputModeMQTT:
		subscriber, err := NewMQTTSubscriber(cfg.MQTT, rawFrames, logger.Named("mqtt"))
		if err != nil {
			initLogger.Error("Failed to create MQTT subscriber", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrConsumerCreationFailed, err)
		}
		src = subscriber
	default:
		consumer, err := NewConsumer(cfg.Kafka, rawFrames, logger.Named("consumer"))
		if err != nil {
			initLogger.Error("Failed to create consumer", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrConsumerCreationFailed, err)
		}
		src = consumer
	}

	p := &Pipeline{
		cfg:         cfg,
		source:      src,
		accumulator: NewAccumulator(store, registry, cfg.Report.Style(), frames, reports, logger.Named("accumulator")),
		publisher:   NewPublisher(cfg.Report, reports, logger.Named("publisher")),
		logger:      logger.Named("pipeline"),
		rawFrames:   rawFrames,
		frames:      frames,
		reports:     reports,
	}

	initLogger.Info("Pipeline instance created successfully", zap.String("input_mode", cfg.Input.Mode))
	return p, nil
}

// Timesteps reports how many timesteps have been applied so far.
func (p *Pipeline) Timesteps() int64 { return p.accumulator.Timesteps() }

// Run starts all stages and returns once the report has been published, a stage
// failed, or ctx was cancelled. A cancelled run publishes nothing.
func (p *Pipeline) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	pipelineErr := make(chan error, 4) // source, accumulator, publisher
	published := make(chan struct{})

	sugar.Info("Pipeline Run: Starting components...")
	wg.Add(4)
	go p.runSource(runCtx, cancel, &wg, pipelineErr)
	go p.runParser(runCtx, &wg)
	go p.runAccumulator(runCtx, &wg, pipelineErr)
	go p.runPublisher(runCtx, &wg, pipelineErr, published)

	var firstErr error
	select {
	case <-published:
		sugar.Info("Pipeline Run: Publisher finished, stopping input...")
	case err := <-pipelineErr:
		sugar.Errorw("Pipeline Run: Received error from a component, initiating shutdown...", zap.Error(err))
		firstErr = err
	case <-ctx.Done():
		sugar.Info("Pipeline Run: Context cancelled. Waiting for components to finish...")
		firstErr = ctx.Err()
	}

	cancel()
	wg.Wait()
	if firstErr == nil {
		select {
		case firstErr = <-pipelineErr:
		default:
		}
	}
	sugar.Info("Pipeline Run: All components finished.")

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

// runSource executes the input source in a goroutine. A failed source cancels the
// run before its channel closes.
func (p *Pipeline) runSource(ctx context.Context, abort context.CancelFunc, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(p.rawFrames)
		p.logger.Debug("Raw frames channel closed")
	}()

	if err := p.source.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Input source exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrSourceRunFailed, err)
		abort()
	}
}

// runParser decodes raw frames in a goroutine. Undecodable frames are counted
// and skipped.
func (p *Pipeline) runParser(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		close(p.frames)
		p.logger.Debug("Frames channel closed")
	}()

	parserLogger := p.logger.Named("parser").Sugar()
	for {
		select {
		case raw, ok := <-p.rawFrames:
			if !ok {
				parserLogger.Debug("Parser finished (raw frame channel closed).")
				return
			}

			frame, err := message.ParseFrame(raw)
			if err != nil {
				frameParseFailures.Inc()
				parserLogger.Warnw("Failed to parse frame, skipping",
					zap.Error(err),
					zap.String("frame_snippet", message.Snippet(raw, 80)),
				)
				continue
			}

			select {
			case p.frames <- frame:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// runAccumulator executes the accumulator in a goroutine.
func (p *Pipeline) runAccumulator(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(p.reports)
		p.logger.Debug("Reports channel closed")
	}()

	if err := p.accumulator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Accumulator component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrAccumulatorRunFailed, err)
	}
}

// runPublisher executes the publisher in a goroutine and signals when it is done.
func (p *Pipeline) runPublisher(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error, done chan<- struct{}) {
	defer wg.Done()
	defer close(done)

	if err := p.publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Publisher component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrPublisherRunFailed, err)
	}
}
