// Package output serializes a finished blueprint and optionally mirrors each
// record to an OTLP log endpoint.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"etcfiles/blueprint"
	"etcfiles/config"
	"etcfiles/logger"
)

const SchemaVersion = "1.0.0"

// Metrics summarize one scan. Every file considered lands in exactly one of
// FilesRecorded or a Skipped* counter.
type Metrics struct {
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	FilesSeen           int    `json:"files_seen"`
	FilesRecorded       int    `json:"files_recorded"`
	SkippedIgnored      int    `json:"skipped_ignored"`
	SkippedKnown        int    `json:"skipped_known"`
	SkippedUnsupported  int    `json:"skipped_unsupported"`
	SkippedUnreadable   int    `json:"skipped_unreadable"`
	SkippedManagedLinks int    `json:"skipped_managed_links"`
}

// Document is the on-disk layout of a blueprint.
type Document struct {
	SchemaVersion string                          `json:"schema_version"`
	Host          *blueprint.Host                 `json:"host,omitempty"`
	Files         map[string]blueprint.FileRecord `json:"files"`
	Metrics       *Metrics                        `json:"metrics,omitempty"`
}

// Writer is a blueprint.Sink that collects records and writes the whole
// document on Close. The destination is opened up front so a bad path
// fails before the scan starts.
type Writer struct {
	mu      sync.Mutex
	file    *os.File
	out     io.Writer
	bp      *blueprint.Blueprint
	host    *blueprint.Host
	metrics *Metrics
	otel    *otelLogger
	closed  bool
}

func New(cfg *config.Config, host *blueprint.Host, m *Metrics) (*Writer, error) {
	w := &Writer{
		bp:      blueprint.New(),
		host:    host,
		metrics: m,
	}
	w.bp.Host = host

	if cfg.OutputFileName == "-" {
		w.out = os.Stdout
	} else {
		f, err := os.OpenFile(cfg.OutputFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		w.file = f
		w.out = f
	}

	otel, err := newOtelLogger(cfg)
	if err != nil {
		logger.Warnf("OTEL export disabled: %v", err)
	} else {
		w.otel = otel
		if endpoint := otel.Endpoint(); endpoint != "" {
			logger.Infof("Exporting records to OTLP endpoint %s", endpoint)
		}
	}
	w.otel.EmitHost(host)
	return w, nil
}

func (w *Writer) AddFile(path string, rec blueprint.FileRecord) {
	w.bp.AddFile(path, rec)
	w.otel.EmitFile(path, rec)
}

// Blueprint returns the records collected so far.
func (w *Writer) Blueprint() *blueprint.Blueprint {
	return w.bp
}

func (w *Writer) SetMetrics(m Metrics) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metrics = &m
}

// Close writes the document and releases the destination. Calling it more
// than once is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.writeDocument()
	w.otel.EmitMetrics(w.metrics)
	w.otel.Shutdown()
	if w.file != nil {
		if serr := w.file.Sync(); serr != nil && err == nil {
			err = serr
		}
		if cerr := w.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (w *Writer) writeDocument() error {
	doc := Document{
		SchemaVersion: SchemaVersion,
		Host:          w.host,
		Files:         w.bp.Snapshot(),
		Metrics:       w.metrics,
	}
	data, err := jsonMarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode blueprint: %w", err)
	}
	buf := bufio.NewWriter(w.out)
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write blueprint: %w", err)
	}
	if err := buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write blueprint: %w", err)
	}
	return buf.Flush()
}
