package cmd

import "fmt"

// Storage backends selectable through STORAGE.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPPort          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSslMode         string
	Storage           string
	AMQPURL           string
	AMQPExchange      string
	RedisAddr         string
	RedisChannel      string
	ReconcileSchedule string
}

// DSN returns the PostgreSQL connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode,
	)
}

// InMemory reports whether the service runs without PostgreSQL.
func (c Config) InMemory() bool {
	return c.Storage == StorageMemory
}
