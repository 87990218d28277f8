package output

import (
	"testing"

	"etcfiles/blueprint"
	"etcfiles/config"

	otelLog "go.opentelemetry.io/otel/log"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

func findAttr(kvs []otelLog.KeyValue, key string) (otelLog.Value, bool) {
	for _, kv := range kvs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return otelLog.Value{}, false
}

func TestResolveOtelEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "https://logs.example.test/v1/logs")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://fallback.example.test")

	cfg := &config.Config{OtelEndpoint: "  https://explicit.example.test  ", OtelFromEnv: true}
	if got := resolveOtelEndpoint(cfg); got != "https://explicit.example.test" {
		t.Fatalf("expected explicit endpoint, got %q", got)
	}

	cfg = &config.Config{OtelFromEnv: true}
	if got := resolveOtelEndpoint(cfg); got != "https://logs.example.test/v1/logs" {
		t.Fatalf("expected logs env endpoint, got %q", got)
	}

	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "")
	cfg = &config.Config{OtelFromEnv: true}
	if got := resolveOtelEndpoint(cfg); got != "https://fallback.example.test" {
		t.Fatalf("expected fallback env endpoint, got %q", got)
	}

	cfg = &config.Config{OtelFromEnv: false}
	if got := resolveOtelEndpoint(cfg); got != "" {
		t.Fatalf("expected empty endpoint when env fallback disabled, got %q", got)
	}
}

func TestFileAttributesPolicy(t *testing.T) {
	rec := blueprint.FileRecord{
		Content:  "secret=1\n",
		Encoding: blueprint.EncodingPlain,
		Owner:    blueprint.Named("root"),
		Group:    blueprint.Numeric(0),
		Mode:     "100600",
	}

	kvs := fileAttributes("/etc/app/db.conf", rec, otelPolicy{})
	if _, ok := findAttr(kvs, string(semconv.FilePathKey)); ok {
		t.Fatal("path must be withheld by default")
	}
	if v, ok := findAttr(kvs, string(semconv.FileNameKey)); !ok || v.AsString() != "db.conf" {
		t.Fatalf("expected file name attribute, got %v", v)
	}
	if v, ok := findAttr(kvs, string(semconv.FileSizeKey)); !ok || v.AsInt64() != int64(len(rec.Content)) {
		t.Fatalf("unexpected size attribute %v", v)
	}
	if v, ok := findAttr(kvs, "etcfiles.file.group"); !ok || v.AsString() != "0" {
		t.Fatalf("expected numeric group attribute, got %v", v)
	}

	kvs = fileAttributes("/etc/app/db.conf", rec, otelPolicy{includePaths: true})
	if v, ok := findAttr(kvs, string(semconv.FilePathKey)); !ok || v.AsString() != "/etc/app/db.conf" {
		t.Fatalf("expected path attribute, got %v", v)
	}
	if v, ok := findAttr(kvs, string(semconv.FileDirectoryKey)); !ok || v.AsString() != "/etc/app" {
		t.Fatalf("expected directory attribute, got %v", v)
	}
	if v, ok := findAttr(kvs, string(semconv.FileExtensionKey)); !ok || v.AsString() != "conf" {
		t.Fatalf("expected extension attribute, got %v", v)
	}
}

func TestHostAndMetricsAttributes(t *testing.T) {
	kvs := hostAttributes(&blueprint.Host{Hostname: "web-1", Arch: "arm64"})
	if v, ok := findAttr(kvs, string(semconv.HostNameKey)); !ok || v.AsString() != "web-1" {
		t.Fatalf("unexpected hostname %v", v)
	}
	if _, ok := findAttr(kvs, string(semconv.OSVersionKey)); ok {
		t.Fatal("empty fields must be omitted")
	}

	kvs = metricsAttributes(&Metrics{FilesSeen: 7, FilesRecorded: 2})
	if v, ok := findAttr(kvs, "etcfiles.metrics.files_seen"); !ok || v.AsInt64() != 7 {
		t.Fatalf("unexpected files_seen %v", v)
	}
}

func TestOtelLoggerEndpointAndValidation(t *testing.T) {
	var nilLogger *otelLogger
	if got := nilLogger.Endpoint(); got != "" {
		t.Fatalf("expected empty endpoint for nil logger, got %q", got)
	}
	nilLogger.EmitFile("/etc/hosts", blueprint.FileRecord{})
	nilLogger.EmitMetrics(&Metrics{})
	nilLogger.Shutdown()

	loggerNilCfg, err := newOtelLogger(nil)
	if err != nil {
		t.Fatalf("newOtelLogger(nil) returned error: %v", err)
	}
	if loggerNilCfg != nil {
		t.Fatal("expected nil logger for nil config")
	}

	_, err = newOtelLogger(&config.Config{
		OtelEndpoint:    "localhost:4318",
		OtelServiceName: "etcfiles",
		OtelTimeout:     1,
	})
	if err == nil {
		t.Fatal("expected validation error for endpoint without scheme")
	}
}
