package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// オーバーレイの保存先ドライバです。
const (
	OverlayDriverFile     = "file"
	OverlayDriverPostgres = "postgres"
	OverlayDriverMemory   = "memory"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Roster   RosterConfig   `yaml:"roster"`
	Database DatabaseConfig `yaml:"database" validate:"-"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr" validate:"required"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// RosterConfig は名簿データの配置に関する設定です。
type RosterConfig struct {
	BasePath    string        `yaml:"base_path" validate:"required"`
	MergePolicy string        `yaml:"merge_policy" validate:"oneof=active_only full_snapshot"`
	Overlay     OverlayConfig `yaml:"overlay"`
}

// OverlayConfig はオーバーレイの保存先です。
type OverlayConfig struct {
	Driver string `yaml:"driver" validate:"oneof=file postgres memory"`
	Path   string `yaml:"path" validate:"required_if=Driver file"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host" validate:"required"`
	Port               int           `yaml:"port" validate:"required,min=1,max=65535"`
	User               string        `yaml:"user" validate:"required"`
	Password           string        `yaml:"password" validate:"required"`
	Name               string        `yaml:"name" validate:"required"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns" validate:"min=0"`
	MaxIdleConns       int           `yaml:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
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

// LoadDatabase は database セクションのみを読み込みます。マイグレーション用です。
func LoadDatabase(path string) (*DatabaseConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.Database.validateAndNormalize(newValidator()); err != nil {
		return nil, err
	}
	return &cfg.Database, nil
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func (c *Config) validateAndNormalize() error {
	c.applyDefaults()

	v := newValidator()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config: %w", describe(err))
	}

	if c.Roster.Overlay.Driver == OverlayDriverPostgres {
		if err := c.Database.validateAndNormalize(v); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Roster.MergePolicy == "" {
		c.Roster.MergePolicy = "active_only"
	}
	if c.Roster.Overlay.Driver == "" {
		c.Roster.Overlay.Driver = OverlayDriverFile
	}
}

func (d *DatabaseConfig) validateAndNormalize(v *validator.Validate) error {
	if err := v.Struct(d); err != nil {
		return fmt.Errorf("config: database: %w", describe(err))
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

// describe は validator のエラーを項目名と規則の一覧に変換します。
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Errorf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.Join(msgs...)
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
