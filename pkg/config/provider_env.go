package config

import (
	"github.com/kelseyhightower/envconfig"
)

// envOverrides holds the settings that can be overridden from the
// environment. All variables carry the SOLARWX_ prefix, e.g.
// SOLARWX_HTTP_PORT or SOLARWX_TIMESCALEDB_URL.
type envOverrides struct {
	Debug          *bool   `envconfig:"DEBUG"`
	HTTPListenAddr *string `envconfig:"HTTP_LISTEN_ADDR"`
	HTTPPort       *int    `envconfig:"HTTP_PORT"`
	TimescaleDBURL *string `envconfig:"TIMESCALEDB_URL"`
	PVGISBaseV52   *string `envconfig:"PVGIS_BASE_URL_V52"`
	PVGISBaseV53   *string `envconfig:"PVGIS_BASE_URL_V53"`
	PVGISTimeout   *int    `envconfig:"PVGIS_TIMEOUT_SECONDS"`
	RefreshCron    *string `envconfig:"PVGIS_REFRESH_CRON"`
}

// ApplyEnvOverrides layers environment variable overrides on top of a loaded
// configuration. Unset variables leave the configuration untouched.
func ApplyEnvOverrides(cfg *ConfigData) error {
	var env envOverrides
	if err := envconfig.Process("solarwx", &env); err != nil {
		return err
	}

	if env.Debug != nil {
		cfg.Debug = *env.Debug
	}
	if env.HTTPListenAddr != nil {
		cfg.HTTP.ListenAddr = *env.HTTPListenAddr
	}
	if env.HTTPPort != nil {
		cfg.HTTP.Port = *env.HTTPPort
	}
	if env.TimescaleDBURL != nil {
		if cfg.Storage.TimescaleDB == nil {
			cfg.Storage.TimescaleDB = &TimescaleDBData{}
		}
		cfg.Storage.TimescaleDB.ConnectionString = *env.TimescaleDBURL
	}
	if env.PVGISBaseV52 != nil {
		cfg.PVGIS.BaseURLV52 = *env.PVGISBaseV52
	}
	if env.PVGISBaseV53 != nil {
		cfg.PVGIS.BaseURLV53 = *env.PVGISBaseV53
	}
	if env.PVGISTimeout != nil {
		cfg.PVGIS.TimeoutSeconds = *env.PVGISTimeout
	}
	if env.RefreshCron != nil {
		cfg.PVGIS.RefreshCron = *env.RefreshCron
	}

	return nil
}
