package config

import (
	"time"

	"github.com/zero-day-ai/fraudgraph/internal/fraud"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

// Config is the root configuration for fraudgraph.
type Config struct {
	Neo4j     Neo4jConfig     `mapstructure:"neo4j" yaml:"neo4j" validate:"required"`
	API       APIConfig       `mapstructure:"api" yaml:"api" validate:"required"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Detection DetectionConfig `mapstructure:"detection" yaml:"detection"`
}

// Neo4jConfig contains the graph database connection and pool settings.
type Neo4jConfig struct {
	URI                          string        `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username                     string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password                     string        `mapstructure:"password" yaml:"password" validate:"required"`
	Database                     string        `mapstructure:"database" yaml:"database"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size" yaml:"max_connection_pool_size" validate:"min=1,max=1000"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout" yaml:"connection_acquisition_timeout" validate:"min=1s"`
	MaxConnectionLifetime        time.Duration `mapstructure:"max_connection_lifetime" yaml:"max_connection_lifetime" validate:"min=1s"`
	MaxTransactionRetryTime      time.Duration `mapstructure:"max_transaction_retry_time" yaml:"max_transaction_retry_time" validate:"min=1s"`
	ConnectRetries               int           `mapstructure:"connect_retries" yaml:"connect_retries" validate:"min=1,max=20"`
}

// ClientConfig converts the section into the graph client settings.
func (c Neo4jConfig) ClientConfig() graph.ClientConfig {
	return graph.ClientConfig{
		URI:                          c.URI,
		Username:                     c.Username,
		Password:                     c.Password,
		Database:                     c.Database,
		MaxConnectionPoolSize:        c.MaxConnectionPoolSize,
		ConnectionAcquisitionTimeout: c.ConnectionAcquisitionTimeout,
		MaxConnectionLifetime:        c.MaxConnectionLifetime,
		MaxTransactionRetryTime:      c.MaxTransactionRetryTime,
		ConnectRetries:               c.ConnectRetries,
	}
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Address         string        `mapstructure:"address" yaml:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=1s"`
	// AllowRawQueries enables the Cypher passthrough routes.
	AllowRawQueries bool `mapstructure:"allow_raw_queries" yaml:"allow_raw_queries"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure    bool    `mapstructure:"insecure" yaml:"insecure"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name" validate:"required"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"min=0,max=1"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" validate:"required,startswith=/"`
}

// DetectionConfig holds the default thresholds of the fraud engine.
// A zero field keeps the engine's built-in value.
type DetectionConfig struct {
	Laundering   LaunderingConfig   `mapstructure:"laundering" yaml:"laundering"`
	Devices      DevicesConfig      `mapstructure:"devices" yaml:"devices"`
	Rapid        RapidConfig        `mapstructure:"rapid" yaml:"rapid"`
	Outliers     OutliersConfig     `mapstructure:"outliers" yaml:"outliers"`
	Acceleration AccelerationConfig `mapstructure:"acceleration" yaml:"acceleration"`
	ResultLimit  int                `mapstructure:"result_limit" yaml:"result_limit" validate:"min=0,max=100000"`
}

type LaunderingConfig struct {
	MaxGapDays         int     `mapstructure:"max_gap_days" yaml:"max_gap_days" validate:"min=0"`
	MaxAmountDeviation float64 `mapstructure:"max_amount_deviation" yaml:"max_amount_deviation" validate:"min=0,max=1"`
}

type DevicesConfig struct {
	MinClients int `mapstructure:"min_clients" yaml:"min_clients" validate:"omitempty,min=2"`
}

type RapidConfig struct {
	MinTransactions   int `mapstructure:"min_transactions" yaml:"min_transactions" validate:"omitempty,min=2"`
	TimeWindowMinutes int `mapstructure:"time_window_minutes" yaml:"time_window_minutes" validate:"min=0"`
}

type OutliersConfig struct {
	Multiplier  float64 `mapstructure:"multiplier" yaml:"multiplier" validate:"min=0"`
	AmountFloor float64 `mapstructure:"amount_floor" yaml:"amount_floor" validate:"min=0"`
}

type AccelerationConfig struct {
	Days              int     `mapstructure:"days" yaml:"days" validate:"min=0"`
	IncreaseThreshold float64 `mapstructure:"increase_threshold" yaml:"increase_threshold" validate:"min=0"`
}

// Defaults converts the section into fraud engine defaults.
func (d DetectionConfig) Defaults() fraud.Defaults {
	return fraud.Defaults{
		Laundering: fraud.LaunderingOptions{
			MaxGapDays:         d.Laundering.MaxGapDays,
			MaxAmountDeviation: d.Laundering.MaxAmountDeviation,
		},
		MinClients: d.Devices.MinClients,
		Rapid: fraud.RapidOptions{
			MinTransactions:   d.Rapid.MinTransactions,
			TimeWindowMinutes: d.Rapid.TimeWindowMinutes,
		},
		Outliers: fraud.OutlierOptions{
			Multiplier:  d.Outliers.Multiplier,
			AmountFloor: d.Outliers.AmountFloor,
		},
		Acceleration: fraud.AccelerationOptions{
			Days:              d.Acceleration.Days,
			IncreaseThreshold: d.Acceleration.IncreaseThreshold,
		},
		ResultLimit: d.ResultLimit,
	}
}
