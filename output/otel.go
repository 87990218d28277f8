package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"etcfiles/blueprint"
	"etcfiles/config"
	"etcfiles/logger"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otelLog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

const eventName = "etcfiles.record"

type otelLogger struct {
	provider *sdklog.LoggerProvider
	logger   otelLog.Logger
	timeout  time.Duration
	endpoint string
	policy   otelPolicy
}

// otelPolicy controls which parts of a record leave the host. File
// contents may hold credentials, so both are off unless asked for.
type otelPolicy struct {
	includePaths   bool
	includeContent bool
}

func newOtelLogger(cfg *config.Config) (*otelLogger, error) {
	if cfg == nil {
		return nil, nil
	}
	endpoint := resolveOtelEndpoint(cfg)
	if endpoint == "" {
		return nil, nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("otel endpoint must include scheme (http or https)")
	}

	opts := []otlploghttp.Option{otlploghttp.WithEndpointURL(endpoint)}
	if len(cfg.OtelHeaders) > 0 {
		opts = append(opts, otlploghttp.WithHeaders(cfg.OtelHeaders))
	}
	if cfg.OtelTimeout > 0 {
		opts = append(opts, otlploghttp.WithTimeout(cfg.OtelTimeout))
	}

	exp, err := otlploghttp.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(cfg.OtelServiceName),
	)
	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		sdklog.WithResource(res),
	)

	return &otelLogger{
		provider: provider,
		logger:   provider.Logger("etcfiles"),
		timeout:  cfg.OtelTimeout,
		endpoint: endpoint,
		policy: otelPolicy{
			includePaths:   cfg.OtelExportPaths,
			includeContent: cfg.OtelExportContent,
		},
	}, nil
}

func resolveOtelEndpoint(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	if endpoint := strings.TrimSpace(cfg.OtelEndpoint); endpoint != "" {
		return endpoint
	}
	if !cfg.OtelFromEnv {
		return ""
	}
	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT")); endpoint != "" {
		return endpoint
	}
	return strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
}

func (o *otelLogger) Endpoint() string {
	if o == nil {
		return ""
	}
	return o.endpoint
}

func (o *otelLogger) emit(recordType string, body otelLog.Value, attrs []otelLog.KeyValue) {
	if o == nil || o.logger == nil {
		return
	}
	now := time.Now()
	var record otelLog.Record
	record.SetTimestamp(now)
	record.SetObservedTimestamp(now)
	record.SetEventName(eventName)
	record.AddAttributes(
		otelLog.String("record_type", recordType),
		otelLog.String("schema_version", SchemaVersion),
	)
	record.AddAttributes(attrs...)
	if body.Kind() != otelLog.KindEmpty {
		record.SetBody(body)
	}
	o.logger.Emit(context.Background(), record)
}

func (o *otelLogger) EmitFile(path string, rec blueprint.FileRecord) {
	if o == nil {
		return
	}
	var body otelLog.Value
	if o.policy.includeContent {
		body = otelLog.StringValue(rec.Content)
	}
	o.emit("file", body, fileAttributes(path, rec, o.policy))
}

func (o *otelLogger) EmitHost(host *blueprint.Host) {
	if o == nil || host == nil {
		return
	}
	o.emit("host", otelLog.Value{}, hostAttributes(host))
}

func (o *otelLogger) EmitMetrics(m *Metrics) {
	if o == nil || m == nil {
		return
	}
	o.emit("metrics", otelLog.Value{}, metricsAttributes(m))
}

func (o *otelLogger) Shutdown() {
	if o == nil || o.provider == nil {
		return
	}
	timeout := o.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := o.provider.Shutdown(ctx); err != nil {
		logger.Debugf("OTEL shutdown failed: %v", err)
	}
}

func fileAttributes(path string, rec blueprint.FileRecord, policy otelPolicy) []otelLog.KeyValue {
	var kvs []otelLog.KeyValue
	if policy.includePaths && path != "" {
		kvs = append(kvs, otelLog.String(string(semconv.FilePathKey), path))
		kvs = append(kvs, otelLog.String(string(semconv.FileDirectoryKey), filepath.Dir(path)))
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
			kvs = append(kvs, otelLog.String(string(semconv.FileExtensionKey), ext))
		}
	}
	if path != "" {
		kvs = append(kvs, otelLog.String(string(semconv.FileNameKey), filepath.Base(path)))
	}
	kvs = append(kvs, otelLog.Int(string(semconv.FileSizeKey), len(rec.Content)))
	kvs = appendStringAttr(kvs, "etcfiles.file.encoding", string(rec.Encoding))
	kvs = appendStringAttr(kvs, "etcfiles.file.mode", rec.Mode)
	kvs = appendStringAttr(kvs, "etcfiles.file.owner", rec.Owner.String())
	kvs = appendStringAttr(kvs, "etcfiles.file.group", rec.Group.String())
	return kvs
}

func hostAttributes(host *blueprint.Host) []otelLog.KeyValue {
	var kvs []otelLog.KeyValue
	kvs = appendStringAttr(kvs, string(semconv.HostNameKey), host.Hostname)
	kvs = appendStringAttr(kvs, string(semconv.HostArchKey), host.Arch)
	kvs = appendStringAttr(kvs, string(semconv.OSTypeKey), host.OS)
	kvs = appendStringAttr(kvs, string(semconv.OSNameKey), host.Platform)
	kvs = appendStringAttr(kvs, string(semconv.OSVersionKey), host.PlatformVersion)
	kvs = appendStringAttr(kvs, "etcfiles.host.kernel_version", host.KernelVersion)
	return kvs
}

func metricsAttributes(m *Metrics) []otelLog.KeyValue {
	var kvs []otelLog.KeyValue
	kvs = appendStringAttr(kvs, "etcfiles.metrics.start_time", m.StartTime)
	kvs = appendStringAttr(kvs, "etcfiles.metrics.end_time", m.EndTime)
	kvs = append(kvs,
		otelLog.Int("etcfiles.metrics.files_seen", m.FilesSeen),
		otelLog.Int("etcfiles.metrics.files_recorded", m.FilesRecorded),
		otelLog.Int("etcfiles.metrics.skipped_ignored", m.SkippedIgnored),
		otelLog.Int("etcfiles.metrics.skipped_known", m.SkippedKnown),
		otelLog.Int("etcfiles.metrics.skipped_unsupported", m.SkippedUnsupported),
		otelLog.Int("etcfiles.metrics.skipped_unreadable", m.SkippedUnreadable),
		otelLog.Int("etcfiles.metrics.skipped_managed_links", m.SkippedManagedLinks),
	)
	return kvs
}

func appendStringAttr(kvs []otelLog.KeyValue, key, value string) []otelLog.KeyValue {
	if value == "" {
		return kvs
	}
	return append(kvs, otelLog.String(key, value))
}
