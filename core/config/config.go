// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package config holds the environment configuration of the coffee shop commands
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/coffeeshop/core/csql"
	"github.com/relabs-tech/coffeeshop/core/logger"
)

// Database holds the database and logging configuration, shared by all commands
//
// use POSTGRES="host=localhost port=5432 user=postgres dbname=postgres sslmode=disable"
// and POSTGRES_PASSWORD="docker"
type Database struct {
	DBDriver         string `env:"DB_DRIVER,default=postgres" description:"the database driver, postgres or sqlite"`
	Postgres         string `env:"POSTGRES" description:"the connection string for the Postgres DB without password"`
	PostgresPassword string `env:"POSTGRES_PASSWORD,optional" description:"password to the Postgres DB"`
	SQLitePath       string `env:"SQLITE_PATH,default=coffeeshop.db" description:"the database file for the sqlite driver"`
	DBSchema         string `env:"DB_SCHEMA,default=coffeeshop" description:"the Postgres schema"`
	LogLevel         string `env:"LOG_LEVEL,default=info" description:"the log level"`
}

// Service holds the configuration for the server
type Service struct {
	Database
	Auth0Domain  string        `env:"AUTH0_DOMAIN,required" description:"the domain of the token issuer, e.g. tenant.eu.auth0.com"`
	APIAudience  string        `env:"API_AUDIENCE,required" description:"the expected audience of bearer tokens"`
	JWKSURL      string        `env:"JWKS_URL" description:"the JSON web key set, defaults to https://<AUTH0_DOMAIN>/.well-known/jwks.json"`
	JWKSRefresh  time.Duration `env:"JWKS_REFRESH,default=6h" description:"the age after which the key set is downloaded again"`
	Port         int           `env:"PORT,default=5000" description:"the listen port"`
	KafkaBrokers string        `env:"KAFKA_BROKERS" description:"comma separated Kafka brokers, drink changes are published if set"`
	KafkaTopic   string        `env:"KAFKA_TOPIC,default=drinks" description:"the topic for drink changes"`
}

// Load decodes the server configuration from the environment and validates it
func Load() (*Service, error) {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		return nil, err
	}
	if err := service.Validate(); err != nil {
		return nil, err
	}
	return service, nil
}

// LoadDatabase decodes only the database configuration from the environment
func LoadDatabase() (*Database, error) {
	database := &Database{}
	if err := envdecode.Decode(database); err != nil {
		return nil, err
	}
	if err := database.Validate(); err != nil {
		return nil, err
	}
	return database, nil
}

// Validate checks the combination of database settings
func (d *Database) Validate() error {
	switch d.DBDriver {
	case csql.DriverPostgres:
		if d.Postgres == "" {
			return errors.New("POSTGRES is required for the postgres driver")
		}
	case csql.DriverSQLite:
		if d.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", d.DBDriver)
	}
	if _, err := logger.ParseLevel(d.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

// Validate checks the combination of settings
func (s *Service) Validate() error {
	if err := s.Database.Validate(); err != nil {
		return err
	}
	if strings.Contains(s.Auth0Domain, "/") {
		return fmt.Errorf("AUTH0_DOMAIN must be a host name, got %q", s.Auth0Domain)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", s.Port)
	}
	return nil
}

// Level returns the parsed log level
func (d *Database) Level() logrus.Level {
	level, err := logger.ParseLevel(d.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Issuer returns the expected "iss" claim of bearer tokens
func (s *Service) Issuer() string {
	return "https://" + s.Auth0Domain + "/"
}

// KeySetURL returns the download url of the JSON web key set
func (s *Service) KeySetURL() string {
	if s.JWKSURL != "" {
		return s.JWKSURL
	}
	return "https://" + s.Auth0Domain + "/.well-known/jwks.json"
}

// DataSource returns the data source for the configured driver
func (d *Database) DataSource() string {
	if d.DBDriver == csql.DriverSQLite {
		return d.SQLitePath
	}
	return d.Postgres
}

// Brokers returns the Kafka brokers, nil if notifications are disabled
func (s *Service) Brokers() []string {
	var brokers []string
	for _, broker := range strings.Split(s.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// OpenDB opens the configured database
func (d *Database) OpenDB() (*csql.DB, error) {
	return csql.Open(d.DBDriver, d.DataSource(), d.PostgresPassword, d.DBSchema)
}
