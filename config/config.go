package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"etcfiles/dpkg"
	"etcfiles/ignore"
)

// Version is stamped at build time with -ldflags "-X etcfiles/config.Version=...".
var Version = "dev"

type Config struct {
	Root              string            `json:"root"`
	IgnoreFile        string            `json:"ignore_file"`
	DpkgAdminDir      string            `json:"dpkg_dir"`
	TrustedPackages   []string          `json:"trusted_packages"`
	CollectSystemInfo bool              `json:"collect_system_info"`
	OutputFormat      string            `json:"output_format"`
	OutputFileName    string            `json:"output_file_name"`
	MaxFileSize       int64             `json:"max_file_size"`
	MaxIOPerSecond    int               `json:"max_io_per_second"`
	LogLevel          string            `json:"log_level"`
	ConfigFile        string            `json:"config_file"`
	TraceFile         string            `json:"trace_file"`
	OtelEndpoint      string            `json:"otel_endpoint"`
	OtelFromEnv       bool              `json:"otel_from_env"`
	OtelHeaders       map[string]string `json:"otel_headers"`
	OtelServiceName   string            `json:"otel_service_name"`
	OtelTimeout       time.Duration     `json:"otel_timeout"`
	OtelExportPaths   bool              `json:"otel_export_paths"`
	OtelExportContent bool              `json:"otel_export_content"`
}

func defaults() *Config {
	now := time.Now().UTC()
	return &Config{
		Root:              "/etc",
		IgnoreFile:        ignore.DefaultUserFile(),
		DpkgAdminDir:      dpkg.DefaultAdminDir,
		TrustedPackages:   []string{"base-files"},
		CollectSystemInfo: true,
		OutputFormat:      "json",
		OutputFileName:    fmt.Sprintf("blueprint-%s.json", now.Format("20060102-150405")),
		MaxFileSize:       0,
		MaxIOPerSecond:    0,
		LogLevel:          "info",
		OtelHeaders:       map[string]string{},
		OtelServiceName:   "etcfiles",
		OtelTimeout:       5 * time.Second,
	}
}

func LoadConfig() (*Config, error) {
	cfg := defaults()

	root := flag.String("root", cfg.Root, fmt.Sprintf("Configuration tree to scan (default: %s).", cfg.Root))
	ignoreFile := flag.String("ignore-file", cfg.IgnoreFile, "User ignore rules file (default: ~/.blueprintignore).")
	dpkgDir := flag.String("dpkg-dir", cfg.DpkgAdminDir, fmt.Sprintf("dpkg administrative directory (default: %s).", cfg.DpkgAdminDir))
	trusted := flag.String("trusted-packages", strings.Join(cfg.TrustedPackages, ","), "Comma-separated packages whose files are never recorded (default: base-files).")
	collectSystemInfo := flag.Bool("collect-system-info", cfg.CollectSystemInfo, fmt.Sprintf("Stamp host facts into the blueprint (default: %t).", cfg.CollectSystemInfo))
	format := flag.String("format", cfg.OutputFormat, fmt.Sprintf("Output format: json (default: %s).", cfg.OutputFormat))
	output := flag.String("output", cfg.OutputFileName, "Output file name, or - for stdout (default: blueprint-<timestamp>.json).")
	maxFileSize := flag.Int64("max-file-size", cfg.MaxFileSize, "Skip files larger than this many bytes (default: 0, unlimited).")
	maxIO := flag.Int("max-io-per-second", cfg.MaxIOPerSecond, "Maximum files read per second (default: 0, unlimited).")
	logLevel := flag.String("log-level", cfg.LogLevel, fmt.Sprintf("Log level: debug, info, warn, error, fatal, or panic (default: %s).", cfg.LogLevel))
	configFile := flag.String("config", "", "Path to JSON configuration file (default: none).")
	traceFile := flag.String("trace-file", cfg.TraceFile, "Write a runtime trace here when built with -tags trace (default: none).")
	otelEndpoint := flag.String("otel-endpoint", cfg.OtelEndpoint, "OTLP/HTTP logs endpoint (default: none).")
	otelFromEnv := flag.Bool("otel-from-env", cfg.OtelFromEnv, "Allow OTEL endpoint fallback from OTEL environment variables (default: false).")
	otelHeaders := flag.String("otel-headers", "", "Comma-separated OTEL headers (key=value) for export (default: none).")
	otelServiceName := flag.String("otel-service-name", cfg.OtelServiceName, "OTEL service name for export (default: etcfiles).")
	otelTimeout := flag.Duration("otel-timeout", cfg.OtelTimeout, "OTEL export timeout (default: 5s).")
	otelExportPaths := flag.Bool("otel-export-paths", cfg.OtelExportPaths, "Include file paths in OTEL payloads (default: false).")
	otelExportContent := flag.Bool("otel-export-content", cfg.OtelExportContent, "Include file contents in OTEL payloads (default: false).")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = displayHelp
	flag.Parse()
	if *showVersion {
		fmt.Printf("etcfiles version %s\n", Version)
		os.Exit(0)
	}
	if *configFile != "" {
		cfg.ConfigFile = *configFile
		if err := cfg.loadFromFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			cfg.Root = *root
		case "ignore-file":
			cfg.IgnoreFile = *ignoreFile
		case "dpkg-dir":
			cfg.DpkgAdminDir = *dpkgDir
		case "trusted-packages":
			cfg.TrustedPackages = parseCommaSeparated(*trusted)
		case "collect-system-info":
			cfg.CollectSystemInfo = *collectSystemInfo
		case "format":
			cfg.OutputFormat = *format
		case "output":
			cfg.OutputFileName = *output
		case "max-file-size":
			cfg.MaxFileSize = *maxFileSize
		case "max-io-per-second":
			cfg.MaxIOPerSecond = *maxIO
		case "log-level":
			cfg.LogLevel = *logLevel
		case "trace-file":
			cfg.TraceFile = *traceFile
		case "otel-endpoint":
			cfg.OtelEndpoint = *otelEndpoint
		case "otel-from-env":
			cfg.OtelFromEnv = *otelFromEnv
		case "otel-headers":
			cfg.OtelHeaders = parseHeaders(*otelHeaders)
		case "otel-service-name":
			cfg.OtelServiceName = *otelServiceName
		case "otel-timeout":
			cfg.OtelTimeout = *otelTimeout
		case "otel-export-paths":
			cfg.OtelExportPaths = *otelExportPaths
		case "otel-export-content":
			cfg.OtelExportContent = *otelExportContent
		}
	})
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func displayHelp() {
	fmt.Println("etcfiles - record locally customized configuration files")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  etcfiles [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  etcfiles --output blueprint.json")
	fmt.Println("  etcfiles --root /srv/chroot/etc --dpkg-dir /srv/chroot/var/lib/dpkg")
	fmt.Println("  etcfiles --ignore-file ./blueprintignore --log-level debug --output -")
}

func (cfg *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid config file format: %w", err)
	}
	return nil
}

func (cfg *Config) normalize() {
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "json"
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.OtelEndpoint = strings.TrimSpace(cfg.OtelEndpoint)
	cfg.OtelServiceName = strings.TrimSpace(cfg.OtelServiceName)
	if cfg.OtelServiceName == "" {
		cfg.OtelServiceName = "etcfiles"
	}
	if cfg.Root != "" {
		if abs, err := filepath.Abs(cfg.Root); err == nil {
			cfg.Root = abs
		}
	}
	cfg.TrustedPackages = nonEmpty(cfg.TrustedPackages)
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.Root) == "" {
		return fmt.Errorf("root must not be empty")
	}
	if strings.TrimSpace(cfg.DpkgAdminDir) == "" {
		return fmt.Errorf("dpkg-dir must not be empty")
	}
	if strings.TrimSpace(cfg.OutputFileName) == "" {
		return fmt.Errorf("output must not be empty")
	}
	if cfg.OutputFormat != "json" {
		return fmt.Errorf("invalid output format: %s (only json is supported)", cfg.OutputFormat)
	}
	if cfg.MaxFileSize < 0 {
		return fmt.Errorf("max-file-size must be zero or positive")
	}
	if cfg.MaxIOPerSecond < 0 {
		return fmt.Errorf("max-io-per-second must be zero or positive")
	}
	if cfg.OtelTimeout < 0 {
		return fmt.Errorf("otel-timeout must be zero or positive")
	}
	if cfg.OtelEndpoint != "" {
		if !strings.HasPrefix(cfg.OtelEndpoint, "http://") && !strings.HasPrefix(cfg.OtelEndpoint, "https://") {
			return fmt.Errorf("otel-endpoint must include scheme (http or https)")
		}
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" &&
		cfg.LogLevel != "error" && cfg.LogLevel != "fatal" && cfg.LogLevel != "panic" {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	return nil
}

func parseCommaSeparated(input string) []string {
	if input == "" {
		return []string{}
	}
	items := strings.Split(input, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}
	return items
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseHeaders(input string) map[string]string {
	headers := make(map[string]string)
	if input == "" {
		return headers
	}
	items := strings.Split(input, ",")
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		headers[key] = value
	}
	return headers
}
