package manager

import (
	"DumpSpectra/internal/alerter"
	"DumpSpectra/internal/config"
	"DumpSpectra/internal/engine/aggregator"
	"DumpSpectra/internal/engine/detector"
	"DumpSpectra/internal/engine/filter"
	_ "DumpSpectra/internal/engine/impl/document" // Registers the report writer
	_ "DumpSpectra/internal/engine/impl/file"     // Registers the file writers
	_ "DumpSpectra/internal/engine/impl/store"    // Registers the database and broker writers
	"DumpSpectra/internal/engine/protocol"
	"DumpSpectra/internal/factory"
	"DumpSpectra/internal/model"
	"DumpSpectra/internal/notification"
	"DumpSpectra/pkg/capture"
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Manager runs the capture pipeline and hands the result to its writers.
type Manager struct {
	cfg       *config.Config
	canon     *aggregator.Canonicalizer
	extractor *protocol.Extractor
	writers   []model.Writer
	alerter   *alerter.Alerter

	numWorkers int
	batchSize  int
}

// NewManager creates a new Manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	canon, err := aggregator.NewCanonicalizer(cfg.Aggregator.Aliases)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregator aliases: %w", err)
	}

	writers, err := factory.Create(cfg)
	if err != nil {
		return nil, err
	}

	var alertr *alerter.Alerter
	if cfg.Alerter.Enabled {
		notifier := notification.NewEmailNotifier(cfg.SMTP)
		if notifier == nil {
			log.Warn("Alerter is enabled in config, but no notifiers are configured. Alerts will only be logged.")
		}
		alertr = alerter.NewAlerter(&cfg.Alerter, notifier)
		log.Info("Alerter enabled and initialized.")
	}

	var opts []protocol.Option
	if cfg.Extractor.StripBareIPv4 {
		opts = append(opts, protocol.WithBareIPv4Strip())
	}

	return &Manager{
		cfg:        cfg,
		canon:      canon,
		extractor:  protocol.NewExtractor(cfg.Extractor.DedupAddresses, opts...),
		writers:    writers,
		alerter:    alertr,
		numWorkers: max(cfg.Extractor.Workers, 1),
		batchSize:  max(cfg.Extractor.BatchSize, 1),
	}, nil
}

// Writers returns the writers built from the config.
func (m *Manager) Writers() []model.Writer {
	return m.writers
}

// Analyze runs the full pipeline over the capture at path: keyword filter,
// field extraction, aggregation and anomaly detection. An unreadable capture
// is recorded on the result and yields empty counters.
func (m *Manager) Analyze(ctx context.Context, path string) (*model.Result, error) {
	reader := capture.NewReader(path)
	lines := filter.Keywords(reader.Lines(), m.cfg.Capture.Keywords)

	result, err := m.run(ctx, path, model.ModeAnalyze, lines)
	if err != nil {
		return nil, err
	}
	result.InputErr = reader.Err()

	c := result.Counters
	anomalies, err := detector.Detect(c.ByAddress)
	switch {
	case errors.Is(err, detector.ErrNoData):
		log.Warn("No address data, skipping anomaly detection")
	case err != nil:
		return nil, fmt.Errorf("failed to detect anomalies: %w", err)
	default:
		result.Anomalies = &anomalies
	}

	log.WithFields(log.Fields{
		"capture":  path,
		"frames":   c.Frames,
		"sources":  c.BySource.Len(),
		"suspects": suspectCount(result.Anomalies),
	}).Info("Analysis completed")
	return result, nil
}

// Extract runs the header filter over the capture and collects the
// source/destination pairs and host rows without anomaly detection.
func (m *Manager) Extract(ctx context.Context, path string) (*model.Result, error) {
	reader := capture.NewReader(path)
	lines := filter.Headers(reader.Lines(), m.cfg.Capture.TimestampPrefix, m.cfg.Capture.HexDumpMarker)

	result, err := m.run(ctx, path, model.ModeExtract, lines)
	if err != nil {
		return nil, err
	}
	result.InputErr = reader.Err()

	log.WithFields(log.Fields{
		"capture": path,
		"pairs":   len(result.Pairs),
		"hosts":   len(result.Hosts),
		"frames":  result.Counters.Frames,
	}).Info("Extraction completed")
	return result, nil
}

// run drains lines in batches, extracts frames with the worker pool and
// ingests them in line order.
func (m *Manager) run(ctx context.Context, path, mode string, lines iter.Seq[model.RawLine]) (*model.Result, error) {
	agg := aggregator.New(m.canon)
	result := &model.Result{
		Source:    path,
		Mode:      mode,
		Generated: time.Now(),
	}

	batch := make([]model.RawLine, 0, m.batchSize)
	flush := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, frame := range m.extractBatch(batch) {
			line := batch[i]
			agg.Ingest(frame)
			result.Filtered = append(result.Filtered, line.Text)
			if frame.HasPair() {
				result.Pairs = append(result.Pairs, model.Pair{Source: frame.Source, Destination: frame.Destination})
			}
			if host, ok := protocol.ExtractHost(line.Text, m.cfg.Capture.TimestampPrefix); ok {
				result.Hosts = append(result.Hosts, host)
			}
		}
		batch = batch[:0]
		return nil
	}

	for line := range lines {
		batch = append(batch, line)
		if len(batch) == m.batchSize {
			if err := flush(); err != nil {
				return nil, fmt.Errorf("pipeline interrupted: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return nil, fmt.Errorf("pipeline interrupted: %w", err)
	}

	result.Counters = agg.Counters()
	result.OverThresholdSources = detector.OverThreshold(result.Counters.BySource, m.cfg.Detector.HostThreshold)
	result.OverThresholdDestinations = detector.OverThreshold(result.Counters.ByDestination, m.cfg.Detector.HostThreshold)
	return result, nil
}

// extractBatch extracts every line of the batch. frames[i] always belongs to
// lines[i], whatever the number of workers.
func (m *Manager) extractBatch(lines []model.RawLine) []*model.Frame {
	frames := make([]*model.Frame, len(lines))
	if m.numWorkers == 1 || len(lines) < 2 {
		for i, line := range lines {
			frames[i] = m.extractor.Extract(line)
		}
		return frames
	}

	jobs := make(chan int, len(lines))
	for i := range lines {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(m.numWorkers)
	for w := 0; w < m.numWorkers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				frames[i] = m.extractor.Extract(lines[i])
			}
		}()
	}
	wg.Wait()
	return frames
}

// Emit hands the result to every writer and then to the alerter. A failing
// writer does not stop the others; all failures are returned together.
func (m *Manager) Emit(result *model.Result) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Write(result); err != nil {
			log.WithError(err).WithField("writer", w.Name()).Error("Writer failed")
			errs = append(errs, fmt.Errorf("writer %s: %w", w.Name(), err))
		}
	}

	if m.alerter != nil {
		if _, err := m.alerter.Run(result); err != nil {
			log.WithError(err).Error("Alerter failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases the writers that hold connections.
func (m *Manager) Close() error {
	var errs []error
	for _, w := range m.writers {
		if c, ok := w.(model.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close writer %s: %w", w.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func suspectCount(anomalies *model.AnomalyReport) int {
	if anomalies == nil {
		return 0
	}
	return len(anomalies.Suspects)
}
