package mysqlwrapper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/Patrick-Hull/MySQLWrapper/internal/database"
	"github.com/Patrick-Hull/MySQLWrapper/internal/events"
	"github.com/Patrick-Hull/MySQLWrapper/internal/kvstore"
)

const envPrefix = "MYSQLWRAPPER_"

// Config represents the root configuration for a Client.
type Config struct {
	// Database contains the connection settings.
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Cache contains the SELECT result cache settings.
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Events contains mutation event publishing settings.
	Events EventsConfig `yaml:"events" json:"events"`
}

// DatabaseConfig contains configuration for the database session.
type DatabaseConfig struct {
	// Driver is "mysql" (default) or "sqlite3".
	Driver string `yaml:"driver" json:"driver"`

	// Host is the MySQL server, either a bare host or host:port.
	Host string `yaml:"host" json:"host"`

	// Port is used when Host has no port. Defaults to 3306.
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// Database is the default schema used by the CLI and the HTTP gateway
	// when a request does not name one.
	Database string `yaml:"database,omitempty" json:"database,omitempty"`

	// Path is the SQLite file. ":memory:" opens an in-memory database.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// MaxOpenConns caps open connections. Defaults to a single session.
	MaxOpenConns int `yaml:"max_open_conns,omitempty" json:"max_open_conns,omitempty"`

	MaxIdleConns      int           `yaml:"max_idle_conns,omitempty" json:"max_idle_conns,omitempty"`
	ConnMaxLifetime   time.Duration `yaml:"conn_max_lifetime,omitempty" json:"conn_max_lifetime,omitempty"`
	ConnMaxIdleTime   time.Duration `yaml:"conn_max_idle_time,omitempty" json:"conn_max_idle_time,omitempty"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout,omitempty" json:"connection_timeout,omitempty"`

	// MaxStatementsPerSecond throttles every statement when greater than 0.
	MaxStatementsPerSecond int `yaml:"max_statements_per_second,omitempty" json:"max_statements_per_second,omitempty"`
}

// CacheConfig contains configuration for the SELECT result cache.
type CacheConfig struct {
	// Enabled creates a cache store for the client. Individual selects
	// still opt in with SelectQuery.Cache.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Type is "redis", "dynamodb" or "memory".
	Type string `yaml:"type" json:"type"`

	// Namespace prefixes every cache key.
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`

	// DefaultTTL applies to selects that leave CacheDuration at zero.
	DefaultTTL time.Duration `yaml:"default_ttl,omitempty" json:"default_ttl,omitempty"`

	// Redis
	Endpoints    []string      `yaml:"endpoints,omitempty" json:"endpoints,omitempty"`
	Password     string        `yaml:"password,omitempty" json:"password,omitempty"`
	DB           int           `yaml:"db,omitempty" json:"db,omitempty"`
	MaxRetries   int           `yaml:"max_retries,omitempty" json:"max_retries,omitempty"`
	PoolSize     int           `yaml:"pool_size,omitempty" json:"pool_size,omitempty"`
	MinIdleConns int           `yaml:"min_idle_conns,omitempty" json:"min_idle_conns,omitempty"`
	DialTimeout  time.Duration `yaml:"dial_timeout,omitempty" json:"dial_timeout,omitempty"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty" json:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty" json:"write_timeout,omitempty"`

	// DynamoDB
	Region          string `yaml:"region,omitempty" json:"region,omitempty"`
	TableName       string `yaml:"table_name,omitempty" json:"table_name,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty"`

	// Memory
	Capacity           int           `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	NumShards          int           `yaml:"num_shards,omitempty" json:"num_shards,omitempty"`
	MaxTTL             time.Duration `yaml:"max_ttl,omitempty" json:"max_ttl,omitempty"`
	EvictionPercentage int           `yaml:"eviction_percentage,omitempty" json:"eviction_percentage,omitempty"`
}

// EventsConfig contains configuration for mutation events.
type EventsConfig struct {
	// Type is "", "memory" or "kafka". Empty disables publishing.
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	// BufferSize is the capacity of the memory publisher.
	BufferSize int `yaml:"buffer_size,omitempty" json:"buffer_size,omitempty"`

	Kafka KafkaConfig `yaml:"kafka,omitempty" json:"kafka,omitempty"`
}

// KafkaConfig contains configuration for the Kafka publisher.
type KafkaConfig struct {
	// Brokers is a list of Kafka broker addresses (e.g., ["localhost:9092"]).
	Brokers []string `yaml:"brokers" json:"brokers"`

	// Topic receives one message per successful write.
	Topic string `yaml:"topic" json:"topic"`

	BatchSize    int           `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	BatchTimeout time.Duration `yaml:"batch_timeout,omitempty" json:"batch_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty" json:"write_timeout,omitempty"`

	// RequiredAcks is the number of acknowledgments required (0, 1, or -1 for all).
	RequiredAcks int `yaml:"required_acks,omitempty" json:"required_acks,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:            "mysql",
			Host:              "localhost",
			Port:              3306,
			MaxOpenConns:      1,
			MaxIdleConns:      1,
			ConnMaxLifetime:   5 * time.Minute,
			ConnMaxIdleTime:   10 * time.Minute,
			ConnectionTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:            false,
			Type:               "redis",
			Namespace:          "mysqlwrapper",
			DefaultTTL:         DefaultCacheDuration,
			Endpoints:          []string{"localhost:6379"},
			MaxRetries:         3,
			PoolSize:           10,
			MinIdleConns:       1,
			DialTimeout:        5 * time.Second,
			ReadTimeout:        3 * time.Second,
			WriteTimeout:       3 * time.Second,
			Capacity:           10000,
			NumShards:          10,
			MaxTTL:             24 * time.Hour,
			EvictionPercentage: 10,
		},
		Events: EventsConfig{
			BufferSize: 1000,
			Kafka: KafkaConfig{
				Brokers:      []string{"localhost:9092"},
				Topic:        "mysqlwrapper-mutations",
				BatchSize:    100,
				BatchTimeout: 10 * time.Millisecond,
				WriteTimeout: 10 * time.Second,
				RequiredAcks: -1, // All replicas
			},
		},
	}
}

// LoadConfigFile loads configuration from a YAML or JSON file on top of
// DefaultConfig. The format is chosen by extension (.yaml, .yml or .json).
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return LoadConfigYAML(data)
	case ".json":
		return LoadConfigJSON(data)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}
}

// LoadConfigYAML loads configuration from YAML data.
func LoadConfigYAML(data []byte) (*Config, error) {
	config := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// LoadConfigJSON loads configuration from JSON data. Durations are
// nanosecond integers in JSON.
func LoadConfigJSON(data []byte) (*Config, error) {
	config := DefaultConfig()
	if len(data) > 0 {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// ApplyEnv overrides fields from environment variables named
// MYSQLWRAPPER_<SECTION>_<KEY>, for example:
//   - MYSQLWRAPPER_DATABASE_HOST=db.internal
//   - MYSQLWRAPPER_DATABASE_PORT=3307
//   - MYSQLWRAPPER_CACHE_ENABLED=true
//   - MYSQLWRAPPER_CACHE_ENDPOINTS=localhost:6379,localhost:6380
//   - MYSQLWRAPPER_EVENTS_KAFKA_BROKERS=localhost:9092
//
// Unparseable numbers and durations are ignored.
func (c *Config) ApplyEnv() {
	// Database configuration
	if val := getenv("DATABASE_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := getenv("DATABASE_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := getenv("DATABASE_PORT"); val != "" {
		var port int
		if _, err := fmt.Sscanf(val, "%d", &port); err == nil {
			c.Database.Port = port
		}
	}
	if val := getenv("DATABASE_USERNAME"); val != "" {
		c.Database.Username = val
	}
	if val := getenv("DATABASE_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := getenv("DATABASE_DATABASE"); val != "" {
		c.Database.Database = val
	}
	if val := getenv("DATABASE_PATH"); val != "" {
		c.Database.Path = val
	}
	if val := getenv("DATABASE_MAX_OPEN_CONNS"); val != "" {
		var n int
		if _, err := fmt.Sscanf(val, "%d", &n); err == nil {
			c.Database.MaxOpenConns = n
		}
	}
	if val := getenv("DATABASE_MAX_STATEMENTS_PER_SECOND"); val != "" {
		var n int
		if _, err := fmt.Sscanf(val, "%d", &n); err == nil {
			c.Database.MaxStatementsPerSecond = n
		}
	}

	// Cache configuration
	if val := getenv("CACHE_ENABLED"); val != "" {
		c.Cache.Enabled = val == "true" || val == "1"
	}
	if val := getenv("CACHE_TYPE"); val != "" {
		c.Cache.Type = val
	}
	if val := getenv("CACHE_NAMESPACE"); val != "" {
		c.Cache.Namespace = val
	}
	if val := getenv("CACHE_DEFAULT_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Cache.DefaultTTL = d
		}
	}
	if val := getenv("CACHE_ENDPOINTS"); val != "" {
		c.Cache.Endpoints = strings.Split(val, ",")
	}
	if val := getenv("CACHE_PASSWORD"); val != "" {
		c.Cache.Password = val
	}
	if val := getenv("CACHE_DB"); val != "" {
		var db int
		if _, err := fmt.Sscanf(val, "%d", &db); err == nil {
			c.Cache.DB = db
		}
	}
	if val := getenv("CACHE_REGION"); val != "" {
		c.Cache.Region = val
	}
	if val := getenv("CACHE_TABLE_NAME"); val != "" {
		c.Cache.TableName = val
	}
	if val := getenv("CACHE_ENDPOINT"); val != "" {
		c.Cache.Endpoint = val
	}

	// Events configuration
	if val := getenv("EVENTS_TYPE"); val != "" {
		c.Events.Type = val
	}
	if val := getenv("EVENTS_KAFKA_BROKERS"); val != "" {
		c.Events.Kafka.Brokers = strings.Split(val, ",")
	}
	if val := getenv("EVENTS_KAFKA_TOPIC"); val != "" {
		c.Events.Kafka.Topic = val
	}
}

func getenv(key string) string {
	return os.Getenv(envPrefix + key)
}

// Validate checks the configuration. Cache settings are checked by the
// validator registered for the cache type.
func (c *Config) Validate() error {
	db := &c.Database
	sqlite := db.Driver == "sqlite3" || db.Driver == "sqlite"
	if err := validation.ValidateStruct(db,
		validation.Field(&db.Driver, validation.In("mysql", "sqlite3", "sqlite")),
		validation.Field(&db.Host, validation.When(!sqlite, validation.Required)),
		validation.Field(&db.Path, validation.When(sqlite, validation.Required)),
		validation.Field(&db.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&db.MaxOpenConns, validation.Min(0)),
		validation.Field(&db.MaxIdleConns, validation.Min(0)),
		validation.Field(&db.MaxStatementsPerSecond, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	cache := &c.Cache
	if err := validation.ValidateStruct(cache,
		validation.Field(&cache.Type, validation.When(cache.Enabled, validation.Required)),
		validation.Field(&cache.DefaultTTL, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if cache.Enabled {
		if err := kvstore.Validate(c.kvStoreConfig()); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}

	ev := &c.Events
	kafka := ev.Type == "kafka"
	if err := validation.ValidateStruct(ev,
		validation.Field(&ev.Type, validation.In("memory", "kafka")),
		validation.Field(&ev.BufferSize, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := validation.ValidateStruct(&ev.Kafka,
		validation.Field(&ev.Kafka.Brokers, validation.When(kafka, validation.Required)),
		validation.Field(&ev.Kafka.Topic, validation.When(kafka, validation.Required)),
		validation.Field(&ev.Kafka.RequiredAcks, validation.In(-1, 0, 1)),
	); err != nil {
		return fmt.Errorf("events.kafka: %w", err)
	}
	return nil
}

func (c DatabaseConfig) options() database.Options {
	return database.Options{
		Driver:                 c.Driver,
		Host:                   c.Host,
		Port:                   c.Port,
		Username:               c.Username,
		Password:               c.Password,
		Database:               c.Database,
		Path:                   c.Path,
		MaxOpenConns:           c.MaxOpenConns,
		MaxIdleConns:           c.MaxIdleConns,
		ConnMaxLifetime:        c.ConnMaxLifetime,
		ConnMaxIdleTime:        c.ConnMaxIdleTime,
		ConnectionTimeout:      c.ConnectionTimeout,
		MaxStatementsPerSecond: c.MaxStatementsPerSecond,
	}
}

func (c *Config) kvStoreConfig() kvstore.KVStoreConfig {
	cc := c.Cache
	return kvstore.KVStoreConfig{
		Type:               cc.Type,
		Endpoints:          cc.Endpoints,
		Password:           cc.Password,
		DB:                 cc.DB,
		MaxRetries:         cc.MaxRetries,
		PoolSize:           cc.PoolSize,
		MinIdleConns:       cc.MinIdleConns,
		DialTimeout:        cc.DialTimeout,
		ReadTimeout:        cc.ReadTimeout,
		WriteTimeout:       cc.WriteTimeout,
		Region:             cc.Region,
		TableName:          cc.TableName,
		Endpoint:           cc.Endpoint,
		AccessKeyID:        cc.AccessKeyID,
		SecretAccessKey:    cc.SecretAccessKey,
		Capacity:           cc.Capacity,
		NumShards:          cc.NumShards,
		MaxTTL:             cc.MaxTTL,
		EvictionPercentage: cc.EvictionPercentage,
	}
}

func (c *Config) eventsConfig() events.Config {
	k := c.Events.Kafka
	return events.Config{
		Type:       c.Events.Type,
		BufferSize: c.Events.BufferSize,
		Kafka: events.KafkaConfig{
			Brokers:      k.Brokers,
			Topic:        k.Topic,
			BatchSize:    k.BatchSize,
			BatchTimeout: k.BatchTimeout,
			WriteTimeout: k.WriteTimeout,
			RequiredAcks: k.RequiredAcks,
		},
	}
}
