package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Definition
var (
	framesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annualtables_frames_received_total",
			Help: "Total number of decoded input frames, by frame type.",
		},
		[]string{"type"}, // timestep, end
	)
	frameParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annualtables_frame_parse_failures_total",
			Help: "Total number of input frames that could not be decoded.",
		},
	)
	samplesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annualtables_samples_skipped_total",
			Help: "Total number of frame values not applied to the value store.",
		},
		[]string{"reason"}, // unknown, non_numeric
	)
	timestepsAccumulated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annualtables_timesteps_accumulated_total",
			Help: "Total number of timesteps folded into the tables, by step kind.",
		},
		[]string{"step"},
	)
	engineUpdates = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "annualtables_engine_updates",
			Help: "Accumulation counters of the last finished run.",
		},
		[]string{"kind"}, // samples, extreme, hours, scan
	)
	tableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "annualtables_report_table_rows",
			Help: "Entity rows of each table in the last rendered report.",
		},
		[]string{"table"},
	)
	reportsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annualtables_reports_published_total",
			Help: "Total number of reports written, by output.",
		},
		[]string{"output"}, // a format name, toc, sqlite
	)
	publishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annualtables_report_publish_failures_total",
			Help: "Total number of failed report writes, by output.",
		},
		[]string{"output"},
	)
)
