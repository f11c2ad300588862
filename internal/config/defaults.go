package config

import (
	"time"

	"github.com/zero-day-ai/fraudgraph/internal/fraud"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	client := graph.DefaultConfig()
	detection := fraud.DefaultDefaults()

	return &Config{
		Neo4j: Neo4jConfig{
			URI:                          client.URI,
			Username:                     client.Username,
			Password:                     client.Password,
			MaxConnectionPoolSize:        client.MaxConnectionPoolSize,
			ConnectionAcquisitionTimeout: client.ConnectionAcquisitionTimeout,
			MaxConnectionLifetime:        client.MaxConnectionLifetime,
			MaxTransactionRetryTime:      client.MaxTransactionRetryTime,
			ConnectRetries:               client.ConnectRetries,
		},
		API: APIConfig{
			Address:         ":3000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			AllowRawQueries: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Endpoint:    "",
			ServiceName: "fraudgraph",
			SampleRate:  1.0,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Detection: DetectionConfig{
			Laundering: LaunderingConfig{
				MaxGapDays:         detection.Laundering.MaxGapDays,
				MaxAmountDeviation: detection.Laundering.MaxAmountDeviation,
			},
			Devices: DevicesConfig{MinClients: detection.MinClients},
			Rapid: RapidConfig{
				MinTransactions:   detection.Rapid.MinTransactions,
				TimeWindowMinutes: detection.Rapid.TimeWindowMinutes,
			},
			Outliers: OutliersConfig{
				Multiplier:  detection.Outliers.Multiplier,
				AmountFloor: detection.Outliers.AmountFloor,
			},
			Acceleration: AccelerationConfig{
				Days:              detection.Acceleration.Days,
				IncreaseThreshold: detection.Acceleration.IncreaseThreshold,
			},
			ResultLimit: detection.ResultLimit,
		},
	}
}
