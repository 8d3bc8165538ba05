package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// yamlConfig mirrors ConfigData with YAML tags
type yamlConfig struct {
	Debug bool `yaml:"debug,omitempty"`
	HTTP  struct {
		ListenAddr string `yaml:"listen_addr,omitempty"`
		Port       int    `yaml:"port"`
		Cert       string `yaml:"cert,omitempty"`
		Key        string `yaml:"key,omitempty"`
	} `yaml:"http"`
	Storage struct {
		TimescaleDB *struct {
			ConnectionString string `yaml:"connection_string"`
		} `yaml:"timescaledb,omitempty"`
	} `yaml:"storage,omitempty"`
	PVGIS struct {
		BaseURLV52     string `yaml:"base_url_v52,omitempty"`
		BaseURLV53     string `yaml:"base_url_v53,omitempty"`
		TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
		RefreshCron    string `yaml:"refresh_cron,omitempty"`
		StartYear      int    `yaml:"start_year,omitempty"`
		EndYear        int    `yaml:"end_year,omitempty"`
	} `yaml:"pvgis,omitempty"`
	Sites []struct {
		Name      string  `yaml:"name"`
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
		Month     int     `yaml:"month"`
		Day       int     `yaml:"day"`
		Slope     int     `yaml:"slope,omitempty"`
		Azimuth   int     `yaml:"azimuth,omitempty"`
	} `yaml:"sites,omitempty"`
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(cfgFile, &yc); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Debug: yc.Debug,
		HTTP: HTTPData{
			ListenAddr: yc.HTTP.ListenAddr,
			Port:       yc.HTTP.Port,
			Cert:       yc.HTTP.Cert,
			Key:        yc.HTTP.Key,
		},
		PVGIS: PVGISData{
			BaseURLV52:     yc.PVGIS.BaseURLV52,
			BaseURLV53:     yc.PVGIS.BaseURLV53,
			TimeoutSeconds: yc.PVGIS.TimeoutSeconds,
			RefreshCron:    yc.PVGIS.RefreshCron,
			StartYear:      yc.PVGIS.StartYear,
			EndYear:        yc.PVGIS.EndYear,
		},
	}

	if yc.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yc.Storage.TimescaleDB.ConnectionString,
		}
	}

	for _, s := range yc.Sites {
		config.Sites = append(config.Sites, SiteData{
			Name:      s.Name,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Month:     s.Month,
			Day:       s.Day,
			Slope:     s.Slope,
			Azimuth:   s.Azimuth,
		})
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}
	return y.LoadConfig()
}

// GetHTTPConfig returns the REST server configuration
func (y *YAMLProvider) GetHTTPConfig() (*HTTPData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.HTTP, nil
}

// GetStorageConfig returns the storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Storage, nil
}

// GetPVGISConfig returns the PVGIS client configuration
func (y *YAMLProvider) GetPVGISConfig() (*PVGISData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.PVGIS, nil
}

// GetSites returns the cached analysis sites
func (y *YAMLProvider) GetSites() ([]SiteData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return cfg.Sites, nil
}

// IsReadOnly returns true since YAML files are read-only at runtime
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML files
func (y *YAMLProvider) Close() error {
	return nil
}
