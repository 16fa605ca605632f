package configloader

import (
	"fmt"
	"time"
)

// fileConfig 映射 configs/config.yaml 的原始结构。
// 时长字段以字符串承载（"5s"、"1m"），归一化阶段统一解析。
type fileConfig struct {
	Server struct {
		HTTP struct {
			Network string `json:"network"`
			Addr    string `json:"addr"`
			Timeout string `json:"timeout"`
		} `json:"http"`
		JWT struct {
			ExpectedAudience string `json:"expected_audience"`
			SkipValidate     bool   `json:"skip_validate"`
			Required         bool   `json:"required"`
			HeaderKey        string `json:"header_key"`
		} `json:"jwt"`
		Handlers struct {
			Default string `json:"default"`
			Command string `json:"command"`
			Query   string `json:"query"`
			Upload  string `json:"upload"`
		} `json:"handlers"`
		MetadataKeys []string `json:"metadata_keys"`
	} `json:"server"`
	Data struct {
		Postgres struct {
			DSN               string `json:"dsn"`
			MaxOpenConns      int    `json:"max_open_conns"`
			MinOpenConns      int    `json:"min_open_conns"`
			MaxConnLifetime   string `json:"max_conn_lifetime"`
			MaxConnIdleTime   string `json:"max_conn_idle_time"`
			HealthCheckPeriod string `json:"health_check_period"`
			Schema            string `json:"schema"`
			PreparedStmts     bool   `json:"prepared_stmts"`
			PoolMetrics       bool   `json:"pool_metrics"`
			Transaction       struct {
				DefaultIsolation string `json:"default_isolation"`
				DefaultTimeout   string `json:"default_timeout"`
				LockTimeout      string `json:"lock_timeout"`
				MaxRetries       int    `json:"max_retries"`
				MetricsEnabled   bool   `json:"metrics_enabled"`
			} `json:"transaction"`
		} `json:"postgres"`
	} `json:"data"`
	Media struct {
		Dir            string `json:"dir"`
		MaxUploadBytes int64  `json:"max_upload_bytes"`
		Probe          struct {
			BinPath string `json:"bin_path"`
			Timeout string `json:"timeout"`
		} `json:"probe"`
	} `json:"media"`
	Observability struct {
		GlobalAttributes map[string]string `json:"global_attributes"`
		Tracing          struct {
			Enabled       bool              `json:"enabled"`
			Exporter      string            `json:"exporter"`
			Endpoint      string            `json:"endpoint"`
			Headers       map[string]string `json:"headers"`
			Insecure      bool              `json:"insecure"`
			SamplingRatio float64           `json:"sampling_ratio"`
			Required      bool              `json:"required"`
		} `json:"tracing"`
		Metrics struct {
			Enabled  bool              `json:"enabled"`
			Exporter string            `json:"exporter"`
			Endpoint string            `json:"endpoint"`
			Headers  map[string]string `json:"headers"`
			Insecure bool              `json:"insecure"`
			Interval string            `json:"interval"`
			Required bool              `json:"required"`
		} `json:"metrics"`
	} `json:"observability"`
	Messaging struct {
		Schema string `json:"schema"`
		Outbox struct {
			BatchSize      int    `json:"batch_size"`
			TickInterval   string `json:"tick_interval"`
			InitialBackoff string `json:"initial_backoff"`
			MaxBackoff     string `json:"max_backoff"`
			MaxAttempts    int    `json:"max_attempts"`
			PublishTimeout string `json:"publish_timeout"`
			Workers        int    `json:"workers"`
			LockTTL        string `json:"lock_ttl"`
			LoggingEnabled bool   `json:"logging_enabled"`
			MetricsEnabled bool   `json:"metrics_enabled"`
		} `json:"outbox"`
		Topics map[string]struct {
			ProjectID          string `json:"project_id"`
			TopicID            string `json:"topic_id"`
			PublishTimeout     string `json:"publish_timeout"`
			OrderingKeyEnabled bool   `json:"ordering_key_enabled"`
			LoggingEnabled     bool   `json:"logging_enabled"`
			MetricsEnabled     bool   `json:"metrics_enabled"`
			EmulatorEndpoint   string `json:"emulator_endpoint"`
		} `json:"topics"`
	} `json:"messaging"`
}

// fromFile 将原始文件结构归一化为 RuntimeConfig。
func fromFile(fc *fileConfig) (RuntimeConfig, error) {
	var runtime RuntimeConfig
	var err error

	parse := func(raw, field string) time.Duration {
		if raw == "" || err != nil {
			return 0
		}
		d, parseErr := time.ParseDuration(raw)
		if parseErr != nil {
			err = fmt.Errorf("parse %s %q: %w", field, raw, parseErr)
			return 0
		}
		return d
	}

	runtime.Server = ServerConfig{
		Network: fc.Server.HTTP.Network,
		Address: fc.Server.HTTP.Addr,
		Timeout: parse(fc.Server.HTTP.Timeout, "server.http.timeout"),
		JWT: ServerJWTConfig{
			ExpectedAudience: fc.Server.JWT.ExpectedAudience,
			SkipValidate:     fc.Server.JWT.SkipValidate,
			Required:         fc.Server.JWT.Required,
			HeaderKey:        fc.Server.JWT.HeaderKey,
		},
		Handlers: HandlerTimeoutConfig{
			Default: parse(fc.Server.Handlers.Default, "server.handlers.default"),
			Command: parse(fc.Server.Handlers.Command, "server.handlers.command"),
			Query:   parse(fc.Server.Handlers.Query, "server.handlers.query"),
			Upload:  parse(fc.Server.Handlers.Upload, "server.handlers.upload"),
		},
		MetadataKeys: fc.Server.MetadataKeys,
	}

	pg := fc.Data.Postgres
	runtime.Database = DatabaseConfig{
		DSN:               pg.DSN,
		MaxOpenConns:      pg.MaxOpenConns,
		MinOpenConns:      pg.MinOpenConns,
		MaxConnLifetime:   parse(pg.MaxConnLifetime, "data.postgres.max_conn_lifetime"),
		MaxConnIdleTime:   parse(pg.MaxConnIdleTime, "data.postgres.max_conn_idle_time"),
		HealthCheckPeriod: parse(pg.HealthCheckPeriod, "data.postgres.health_check_period"),
		Schema:            pg.Schema,
		PreparedStmts:     pg.PreparedStmts,
		PoolMetrics:       pg.PoolMetrics,
		Transaction: TransactionConfig{
			DefaultIsolation: pg.Transaction.DefaultIsolation,
			DefaultTimeout:   parse(pg.Transaction.DefaultTimeout, "transaction.default_timeout"),
			LockTimeout:      parse(pg.Transaction.LockTimeout, "transaction.lock_timeout"),
			MaxRetries:       pg.Transaction.MaxRetries,
			MetricsEnabled:   pg.Transaction.MetricsEnabled,
		},
	}

	runtime.Media = MediaConfig{
		Dir:            fc.Media.Dir,
		MaxUploadBytes: fc.Media.MaxUploadBytes,
		Probe: ProbeConfig{
			BinPath: fc.Media.Probe.BinPath,
			Timeout: parse(fc.Media.Probe.Timeout, "media.probe.timeout"),
		},
	}

	runtime.Observability = ObservabilityConfig{
		GlobalAttributes: fc.Observability.GlobalAttributes,
		Tracing: TracingConfig{
			Enabled:       fc.Observability.Tracing.Enabled,
			Exporter:      fc.Observability.Tracing.Exporter,
			Endpoint:      fc.Observability.Tracing.Endpoint,
			Headers:       fc.Observability.Tracing.Headers,
			Insecure:      fc.Observability.Tracing.Insecure,
			SamplingRatio: fc.Observability.Tracing.SamplingRatio,
			Required:      fc.Observability.Tracing.Required,
		},
		Metrics: MetricsConfig{
			Enabled:  fc.Observability.Metrics.Enabled,
			Exporter: fc.Observability.Metrics.Exporter,
			Endpoint: fc.Observability.Metrics.Endpoint,
			Headers:  fc.Observability.Metrics.Headers,
			Insecure: fc.Observability.Metrics.Insecure,
			Interval: parse(fc.Observability.Metrics.Interval, "observability.metrics.interval"),
			Required: fc.Observability.Metrics.Required,
		},
	}

	runtime.Messaging = MessagingConfig{
		Schema: fc.Messaging.Schema,
		Outbox: OutboxConfig{
			BatchSize:      fc.Messaging.Outbox.BatchSize,
			TickInterval:   parse(fc.Messaging.Outbox.TickInterval, "messaging.outbox.tick_interval"),
			InitialBackoff: parse(fc.Messaging.Outbox.InitialBackoff, "messaging.outbox.initial_backoff"),
			MaxBackoff:     parse(fc.Messaging.Outbox.MaxBackoff, "messaging.outbox.max_backoff"),
			MaxAttempts:    fc.Messaging.Outbox.MaxAttempts,
			PublishTimeout: parse(fc.Messaging.Outbox.PublishTimeout, "messaging.outbox.publish_timeout"),
			Workers:        fc.Messaging.Outbox.Workers,
			LockTTL:        parse(fc.Messaging.Outbox.LockTTL, "messaging.outbox.lock_ttl"),
			LoggingEnabled: fc.Messaging.Outbox.LoggingEnabled,
			MetricsEnabled: fc.Messaging.Outbox.MetricsEnabled,
		},
		Topics: map[string]PubSubConfig{},
	}
	for name, topic := range fc.Messaging.Topics {
		runtime.Messaging.Topics[name] = PubSubConfig{
			ProjectID:          topic.ProjectID,
			TopicID:            topic.TopicID,
			PublishTimeout:     parse(topic.PublishTimeout, "messaging.topics.publish_timeout"),
			OrderingKeyEnabled: topic.OrderingKeyEnabled,
			LoggingEnabled:     topic.LoggingEnabled,
			MetricsEnabled:     topic.MetricsEnabled,
			EmulatorEndpoint:   topic.EmulatorEndpoint,
		}
	}

	if err != nil {
		return RuntimeConfig{}, err
	}
	return runtime, nil
}

// fillDefaults 为缺省配置补齐安全的运行默认值。
func fillDefaults(runtime *RuntimeConfig) {
	if runtime.Server.Address == "" {
		runtime.Server.Address = ":8000"
	}
	if runtime.Server.Timeout <= 0 {
		runtime.Server.Timeout = 30 * time.Second
	}
	if len(runtime.Server.MetadataKeys) == 0 {
		runtime.Server.MetadataKeys = []string{"x-md-", "x-apigateway-"}
	}
	if runtime.Database.MaxOpenConns <= 0 {
		runtime.Database.MaxOpenConns = 10
	}
	if runtime.Database.Schema == "" {
		runtime.Database.Schema = "tube"
	}
	if runtime.Media.Dir == "" {
		runtime.Media.Dir = "media"
	}
	if runtime.Media.MaxUploadBytes <= 0 {
		runtime.Media.MaxUploadBytes = 512 << 20
	}
	if runtime.Media.Probe.BinPath == "" {
		runtime.Media.Probe.BinPath = "ffprobe"
	}
	if runtime.Media.Probe.Timeout <= 0 {
		runtime.Media.Probe.Timeout = 15 * time.Second
	}
	if runtime.Messaging.Schema == "" {
		runtime.Messaging.Schema = runtime.Database.Schema
	}
}
