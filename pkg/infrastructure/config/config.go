package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const appID = "pos"

type Config struct {
	ServeRESTAddress string `envconfig:"serve_rest_address" default:":8080"`

	DBHost     string `envconfig:"db_host" default:"localhost"`
	DBPort     string `envconfig:"db_port" default:"3306"`
	DBName     string `envconfig:"db_name" default:"pos"`
	DBUser     string `envconfig:"db_user" default:"pos"`
	DBPassword string `envconfig:"db_password" default:"pos"`

	MigrationsPath string `envconfig:"migrations_path" default:"data/mysql/migrations"`

	// Business rates of the sale engine. Neutral defaults: one cent per
	// redeemed point, no earning, no tax.
	RedemptionCentsPerPoint int64 `envconfig:"redemption_cents_per_point" default:"1"`
	EarnRateBasisPoints     int64 `envconfig:"earn_rate_basis_points" default:"0"`
	TaxRateBasisPoints      int64 `envconfig:"tax_rate_basis_points" default:"0"`
}

func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&multiStatements=true"
}

func Parse() (*Config, error) {
	c := new(Config)
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment config")
	}
	return c, nil
}
