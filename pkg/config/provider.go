// Package config provides configuration loading from YAML files and SQLite
// databases, with environment variable overrides layered on top.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetHTTPConfig() (*HTTPData, error)
	GetStorageConfig() (*StorageData, error)
	GetPVGISConfig() (*PVGISData, error)
	GetSites() ([]SiteData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Debug   bool        `json:"debug,omitempty"`
	HTTP    HTTPData    `json:"http"`
	Storage StorageData `json:"storage,omitempty"`
	PVGIS   PVGISData   `json:"pvgis,omitempty"`
	Sites   []SiteData  `json:"sites,omitempty"`
}

// HTTPData holds the configuration for the REST server
type HTTPData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port"`
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
}

// StorageData holds the configuration for storage backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

// TimescaleDBData holds TimescaleDB connection configuration
type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// PVGISData holds the configuration for the PVGIS API client and the
// day-average cache refresher
type PVGISData struct {
	BaseURLV52     string `json:"base_url_v52,omitempty"`
	BaseURLV53     string `json:"base_url_v53,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	RefreshCron    string `json:"refresh_cron,omitempty"`
	StartYear      int    `json:"start_year,omitempty"`
	EndYear        int    `json:"end_year,omitempty"`
}

// SiteData holds a location whose day-average analysis is kept warm in the
// cache. Month and Day select the calendar day to refresh.
type SiteData struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Month     int     `json:"month"`
	Day       int     `json:"day"`
	Slope     int     `json:"slope,omitempty"`
	Azimuth   int     `json:"azimuth,omitempty"`
}
