package store

import (
	"DumpSpectra/internal/config"
	"DumpSpectra/internal/factory"
	"DumpSpectra/internal/model"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func init() {
	factory.RegisterWriter("nats", func(cfg *config.Config) (model.Writer, error) {
		return NewNATSWriter(cfg.NATS)
	})
}

// NATSWriter publishes the summary of each run to a NATS subject as a
// protobuf-encoded google.protobuf.Struct.
type NATSWriter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSWriter connects to the NATS server.
func NewNATSWriter(cfg config.NATSConfig) (*NATSWriter, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Infof("Connected to NATS server at %s", cfg.URL)
	return &NATSWriter{nc: nc, subject: cfg.Subject}, nil
}

func (w *NATSWriter) Name() string {
	return "nats"
}

// Write serializes the run summary and publishes it.
func (w *NATSWriter) Write(result *model.Result) error {
	data, err := EncodeSummary(result)
	if err != nil {
		return err
	}
	if err := w.nc.Publish(w.subject, data); err != nil {
		return fmt.Errorf("failed to publish summary: %w", err)
	}
	log.Infof("Published run summary to '%s'", w.subject)
	return nil
}

// Close drains and closes the NATS connection.
func (w *NATSWriter) Close() error {
	if w.nc == nil {
		return nil
	}
	if err := w.nc.Drain(); err != nil {
		return fmt.Errorf("failed to drain nats connection: %w", err)
	}
	log.Info("NATS connection drained and closed.")
	return nil
}

// SummaryStruct builds the published message. Anomaly fields are absent when
// the detector had no data.
func SummaryStruct(result *model.Result) (*structpb.Struct, error) {
	c := result.Counters
	fields := map[string]any{
		"source":               result.Source,
		"mode":                 result.Mode,
		"generated":            result.Generated.UTC().Format(time.RFC3339),
		"frames":               c.Frames,
		"http_only":            c.HTTPOnly(),
		"icmp_total":           c.ICMPTotal(),
		"malformed_timestamps": c.MalformedTimestamps,
		"protocols":            entriesMap(c.ByProtocol.Entries()),
		"flags":                entriesMap(c.ByFlag.Entries()),
	}
	if result.Anomalies != nil {
		fields["mean"] = result.Anomalies.Mean
		fields["suspects"] = entriesMap(result.Anomalies.Suspects)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary message: %w", err)
	}
	return s, nil
}

// EncodeSummary returns the wire form of SummaryStruct.
func EncodeSummary(result *model.Result) ([]byte, error) {
	s, err := SummaryStruct(result)
	if err != nil {
		return nil, err
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return data, nil
}

func entriesMap(entries []model.Entry) map[string]any {
	m := make(map[string]any, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Count
	}
	return m
}
