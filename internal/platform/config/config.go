package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath は CONFIG_PATH 未指定時に読み込む設定ファイルです。
const DefaultPath = "assets/local.yaml"

// 取り込み元の種類です。
const (
	SourceNone     = "none"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// テレメトリ出力先の種類です。
const (
	SinkLog      = "log"
	SinkPostgres = "postgres"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Loader    LoaderConfig    `yaml:"loader"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig は gRPC / HTTP サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// HTTPAddr が空の場合 HTTP API は起動しません。
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	ApplicationName    string        `yaml:"application_name"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// LoaderConfig は起動時の一括取り込みに関する設定です。
type LoaderConfig struct {
	Source    string `yaml:"source"`
	CSVPath   string `yaml:"csv_path"`
	BatchSize int    `yaml:"batch_size"`
}

// TelemetryConfig は取り込み結果の出力先に関する設定です。
type TelemetryConfig struct {
	Sinks []string `yaml:"sinks"`
}

// LoggingConfig はログ出力に関する設定です。
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PathFromEnv は CONFIG_PATH 環境変数、未設定なら DefaultPath を返します。
func PathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// NeedsDatabase は設定上 PostgreSQL 接続が必要かどうかを返します。
func (c *Config) NeedsDatabase() bool {
	if c.Loader.Source == SourcePostgres {
		return true
	}
	for _, s := range c.Telemetry.Sinks {
		if s == SinkPostgres {
			return true
		}
	}
	return false
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.Loader.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Telemetry.validateAndNormalize(); err != nil {
		return err
	}

	c.Logging.normalize()

	if c.NeedsDatabase() {
		db := &c.Database
		if err := db.validateAndNormalize(); err != nil {
			return err
		}
	}

	return nil
}

func (l *LoaderConfig) validateAndNormalize() error {
	l.Source = strings.ToLower(strings.TrimSpace(l.Source))
	switch l.Source {
	case "":
		l.Source = SourceNone
	case SourceNone, SourcePostgres:
	case SourceCSV:
		if l.CSVPath == "" {
			return fmt.Errorf("config: loader.csv_path must be set when loader.source is csv")
		}
	default:
		return fmt.Errorf("config: loader.source %q is not supported", l.Source)
	}

	if l.BatchSize < 0 {
		return fmt.Errorf("config: loader.batch_size must not be negative")
	}
	if l.BatchSize == 0 {
		l.BatchSize = 1000
	}
	return nil
}

func (t *TelemetryConfig) validateAndNormalize() error {
	if len(t.Sinks) == 0 {
		t.Sinks = []string{SinkLog}
		return nil
	}
	for i, s := range t.Sinks {
		s = strings.ToLower(strings.TrimSpace(s))
		switch s {
		case SinkLog, SinkPostgres:
			t.Sinks[i] = s
		default:
			return fmt.Errorf("config: telemetry.sinks[%d] %q is not supported", i, s)
		}
	}
	return nil
}

func (l *LoggingConfig) normalize() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

// Validate は database 設定を検証し、既定値と接続時間を補完します。
// Load は PostgreSQL が必要な設定の場合にのみ呼び出します。
func (d *DatabaseConfig) Validate() error {
	return d.validateAndNormalize()
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

// DSN は pgx / golang-migrate 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	if d.ApplicationName != "" {
		q.Set("application_name", d.ApplicationName)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}
