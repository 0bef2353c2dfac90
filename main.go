package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"sensormon/aggregate"
	"sensormon/buffer"
	"sensormon/config"
	"sensormon/dedup"
	"sensormon/export"
	"sensormon/record"
	"sensormon/recorder"
	"sensormon/report"
	"sensormon/source"
	"sensormon/stats"
	"sensormon/ui"
)

// Version is the analyzer release version.
const Version = "1.0.0"

const (
	statsInterval  = 10 * time.Second
	recentCapacity = 64
	recentShown    = 20
)

// pipeline holds the per-line processing chain: parse, count, dedup, sample,
// aggregate. The deduplicator, recorder, and recent ring may be nil when
// disabled.
type pipeline struct {
	tracker *stats.Tracker
	dedup   *dedup.Deduplicator
	rec     *recorder.Recorder
	agg     *aggregate.Aggregator
	recent  *buffer.RingBuffer
}

// Purpose: Fold one raw input line into the pipeline.
// Key aspects: Rejected and duplicate lines are counted but never aggregated.
// Upstream: file reader and live source loops.
// Downstream: record.ParseLine, dedup, recorder, aggregator.
func (p *pipeline) handleLine(line string) {
	rec, ok := record.ParseLine(line)
	if !ok {
		p.tracker.IncrementRejected()
		return
	}
	p.tracker.IncrementParsed()
	p.tracker.IncrementState(rec.State)
	if p.dedup.IsDuplicate(rec, time.Now().UTC()) {
		p.tracker.IncrementDuplicate()
		return
	}
	p.rec.Record(rec)
	p.agg.Add(rec)
	p.recent.Add(rec)
}

// Purpose: Report whether stdout is a TTY for UI gating.
// Key aspects: Uses term.IsTerminal on stdout fd.
// Upstream: main UI selection.
// Downstream: term.IsTerminal.
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Purpose: Load configuration from the given path with a built-in fallback.
// Key aspects: A missing file at the default path falls back to defaults; an
// explicitly named file must exist.
// Upstream: main startup.
// Downstream: config.Load and config.Default.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Purpose: Emit the end-of-run report and side outputs.
// Key aspects: Report goes to stdout; export and anomaly results are logged.
// Upstream: file mode completion and follow mode shutdown.
// Downstream: report.Render, export.WriteSummary, Aggregator.SuspectIDs.
func finishRun(cfg *config.Config, p *pipeline) {
	summary := p.agg.Summarize()
	fmt.Print(report.Render(summary))

	if cfg.Export.Path != "" {
		if err := export.WriteSummary(cfg.Export.Path, summary); err != nil {
			log.Printf("Export: %v", err)
		} else {
			log.Printf("Export: summary written to %s", cfg.Export.Path)
		}
	}

	if cfg.Anomaly.Enabled {
		for _, s := range p.agg.SuspectIDs(cfg.Anomaly.MinRatio) {
			log.Printf("Anomaly: sensor id %q (seen %d) resembles %q (seen %d); possible corruption",
				s.SensorID, s.Count, s.Likely, s.LikelyCount)
		}
	}
}

// Purpose: Program entrypoint; wires configuration, sources, and the pipeline.
// Key aspects: Single-pass file mode or live follow mode with graceful shutdown.
// Upstream: OS process start.
// Downstream: Startup helpers, source loops, and the dashboard.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	inputPath := flag.String("input", "", "telemetry log file to analyze (overrides config)")
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *inputPath != "" {
		cfg.Input.Path = *inputPath
	}

	fanout, err := setupLogging(cfg.Logging, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging: file sink unavailable: %v\n", err)
	}
	log.SetFlags(0)
	log.SetOutput(fanout)
	defer fanout.Close()

	p := &pipeline{
		tracker: stats.NewTracker(),
		agg:     aggregate.New(),
	}
	if cfg.Dedup.Enabled {
		p.dedup = dedup.New(time.Duration(cfg.Dedup.WindowSeconds) * time.Second)
	}
	if cfg.Recorder.Enabled {
		rec, err := recorder.NewRecorder(cfg.Recorder.Path, cfg.Recorder.PerStateLimit)
		if err != nil {
			log.Printf("Recorder: disabled: %v", err)
		} else {
			p.rec = rec
			defer rec.Close()
		}
	}

	if !cfg.FollowMode() {
		runFile(cfg, p)
		return
	}
	runFollow(cfg, p, fanout)
}

// Purpose: Analyze a telemetry log file in a single pass.
// Key aspects: Reads sequentially, renders the report, then exits.
// Upstream: main.
// Downstream: source.ReadFile and finishRun.
func runFile(cfg *config.Config, p *pipeline) {
	path := strings.TrimSpace(cfg.Input.Path)
	if path == "" {
		log.Fatalf("No input file; pass -input or set input.path in the config")
	}

	cfg.Print()
	start := time.Now()
	if err := source.ReadFile(path, p.handleLine); err != nil {
		log.Fatalf("Error reading %s: %v", path, err)
	}

	finishRun(cfg, p)
	log.Printf("Analyzed %s lines (%s rejected) in %s",
		humanize.Comma(int64(p.tracker.Total())),
		humanize.Comma(int64(p.tracker.Rejected())),
		time.Since(start).Round(time.Millisecond))
}

// Purpose: Consume live sources until interrupted, then report.
// Key aspects: One consumer loop over all sources; periodic stats snapshots
// and dedup sweeps on a ticker; SIGINT/SIGTERM or the dashboard quit key
// stops the run.
// Upstream: main.
// Downstream: source clients, dashboard, finishRun.
func runFollow(cfg *config.Config, p *pipeline, fanout *logFanout) {
	quit := make(chan struct{})
	var quitOnce sync.Once
	requestQuit := func() { quitOnce.Do(func() { close(quit) }) }

	uiMode := strings.ToLower(strings.TrimSpace(cfg.UI.Mode))
	var dash *ui.Dashboard
	switch uiMode {
	case "headless":
	case "tview":
		if !isStdoutTTY() {
			log.Printf("UI disabled (tview requires an interactive console)")
		} else {
			dash = ui.NewDashboard(true, requestQuit)
		}
	default:
		log.Printf("UI mode %q not recognized; defaulting to headless", uiMode)
	}

	if dash != nil {
		p.recent = buffer.NewRingBuffer(recentCapacity)
		dash.WaitReady()
		// The dashboard log pane adds no timestamps of its own; the fanout
		// console sink keeps them.
		fanout.SetConsoleSink(dash.SystemWriter(), true)
		dash.SetStats([]string{"Initializing..."})
	} else {
		cfg.Print()
	}

	log.Printf("Sensor monitor v%s starting...", Version)

	var feedLines, mqttLines <-chan string
	var feed *source.FeedClient
	var mq *source.MQTTClient
	if cfg.Feed.Enabled {
		feed = source.NewFeedClient(cfg.Feed.Host, cfg.Feed.Port, cfg.Feed.Name)
		if err := feed.Connect(); err != nil {
			log.Printf("Feed: initial connect failed, retrying in background: %v", err)
		}
		feedLines = feed.Lines()
	}
	if cfg.MQTT.Enabled {
		mq = source.NewMQTTClient(cfg.MQTT.Broker, cfg.MQTT.Port, cfg.MQTT.Topic)
		if err := mq.Connect(); err != nil {
			log.Fatalf("MQTT: connect failed: %v", err)
		}
		mqttLines = mq.Lines()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	start := time.Now()
loop:
	for {
		select {
		case line := <-feedLines:
			p.handleLine(line)
		case line := <-mqttLines:
			p.handleLine(line)
		case <-ticker.C:
			now := time.Now().UTC()
			lines := p.tracker.SnapshotLines()
			for _, l := range lines {
				fanout.WriteFileOnlyLine(l, now)
			}
			if p.dedup != nil {
				p.dedup.Sweep(now)
			}
			if dash != nil {
				dash.SetStats(lines)
				dash.SetSummary(p.agg.Summarize())
				dash.SetRecent(p.recent.Recent(recentShown))
			}
		case <-sigChan:
			log.Printf("Shutdown signal received")
			break loop
		case <-quit:
			break loop
		}
	}

	if feed != nil {
		feed.Stop()
	}
	if mq != nil {
		mq.Stop()
	}
	if dash != nil {
		dash.Stop()
		fanout.SetConsoleSink(os.Stdout, true)
	}

	finishRun(cfg, p)
	log.Printf("Processed %s lines (%s rejected, %s duplicates) in %s",
		humanize.Comma(int64(p.tracker.Total())),
		humanize.Comma(int64(p.tracker.Rejected())),
		humanize.Comma(int64(p.tracker.Duplicates())),
		time.Since(start).Round(time.Second))
}
