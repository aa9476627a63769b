package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/config"
	"github.com/sanspareilsmyn/annualtables/internal/output"
)

const stdoutPath = "-"

// Publisher writes finished reports to every configured output: one file (or
// stdout) per format, the HTML table of contents and the SQLite tabular store.
type Publisher struct {
	cfg    config.ReportConfig
	input  <-chan Report
	stdout io.Writer
	logger *zap.Logger
}

// NewPublisher creates a new Publisher instance.
func NewPublisher(cfg config.ReportConfig, input <-chan Report, logger *zap.Logger) *Publisher {
	logger.Debug("Publisher initialized",
		zap.Strings("formats", cfg.Formats),
		zap.String("output_path", cfg.OutputPath),
		zap.String("sqlite_path", cfg.SQLitePath),
	)
	return &Publisher{cfg: cfg, input: input, stdout: os.Stdout, logger: logger}
}

// Run publishes reports until its input closes.
func (p *Publisher) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	sugar.Info("Starting publisher loop...")
	defer sugar.Info("Publisher loop stopped.")

	for {
		select {
		case r, ok := <-p.input:
			if !ok {
				return nil
			}
			if err := p.publish(ctx, r); err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// publish writes r everywhere it is configured to go. Every output is attempted;
// failures are reported together.
func (p *Publisher) publish(ctx context.Context, r Report) error {
	run := output.NewRun(r.Style, r.Timesteps)
	logger := p.logger.With(zap.String("run_id", run.ID))

	for _, g := range r.Grids {
		tableRows.WithLabelValues(g.Name).Set(float64(g.EntityRows()))
	}

	var errs []error
	record := func(name string, err error) {
		if err != nil {
			publishFailures.WithLabelValues(name).Inc()
			logger.Error("Failed to publish report", zap.String("output", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		reportsPublished.WithLabelValues(name).Inc()
	}

	for _, format := range p.cfg.Formats {
		record(format, p.writeFormat(format, r))
	}
	if p.cfg.TOCPath != "" {
		record("toc", p.writeFile(p.cfg.TOCPath, func(w io.Writer) error {
			return output.WriteTOC(w, r.TOC)
		}))
	}
	if p.cfg.SQLitePath != "" {
		record("sqlite", p.saveSQLite(ctx, run, r, logger))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrPublishFailed, errors.Join(errs...))
	}
	logger.Info("Report published",
		zap.Int("tables", len(r.Grids)),
		zap.Int64("timesteps", r.Timesteps),
	)
	return nil
}

func (p *Publisher) writeFormat(format string, r Report) error {
	write := func(w io.Writer) error {
		if format == "html" {
			if err := output.WriteTOC(w, r.TOC); err != nil {
				return err
			}
		}
		return output.WriteAll(format, w, r.Grids)
	}
	if p.cfg.OutputPath == stdoutPath || p.cfg.OutputPath == "" {
		return write(p.stdout)
	}
	return p.writeFile(p.cfg.OutputPath+output.Extension(format), write)
}

func (p *Publisher) writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return err
	}
	p.logger.Debug("Report file written", zap.String("path", path))
	return nil
}

func (p *Publisher) saveSQLite(ctx context.Context, run output.Run, r Report, logger *zap.Logger) error {
	store, err := output.OpenSQLite(ctx, p.cfg.SQLitePath, logger.Named("sqlite"))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.SaveRun(ctx, run, r.Grids)
}
