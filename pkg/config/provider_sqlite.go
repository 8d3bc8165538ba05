package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	httpCfg, err := s.GetHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load http config: %w", err)
	}
	config.HTTP = *httpCfg

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	pvgisCfg, err := s.GetPVGISConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load pvgis config: %w", err)
	}
	config.PVGIS = *pvgisCfg

	sites, err := s.GetSites()
	if err != nil {
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}
	config.Sites = sites

	return config, nil
}

// GetHTTPConfig returns the REST server configuration from the database
func (s *SQLiteProvider) GetHTTPConfig() (*HTTPData, error) {
	query := `
		SELECT listen_addr, port, cert, key
		FROM http_config
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var httpCfg HTTPData
	var listenAddr, cert, key sql.NullString
	err := s.db.QueryRow(query).Scan(&listenAddr, &httpCfg.Port, &cert, &key)
	if err == sql.ErrNoRows {
		return &HTTPData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query http config: %w", err)
	}

	httpCfg.ListenAddr = listenAddr.String
	httpCfg.Cert = cert.String
	httpCfg.Key = key.String
	return &httpCfg, nil
}

// GetStorageConfig returns the storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	query := `
		SELECT connection_string
		FROM timescaledb_config
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var connString string
	err := s.db.QueryRow(query).Scan(&connString)
	if err == sql.ErrNoRows {
		return &StorageData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	}

	return &StorageData{
		TimescaleDB: &TimescaleDBData{ConnectionString: connString},
	}, nil
}

// GetPVGISConfig returns the PVGIS client configuration from the database
func (s *SQLiteProvider) GetPVGISConfig() (*PVGISData, error) {
	query := `
		SELECT base_url_v52, base_url_v53, timeout_seconds,
		       refresh_cron, start_year, end_year
		FROM pvgis_config
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var cfg PVGISData
	var baseV52, baseV53, refreshCron sql.NullString
	var timeoutSeconds, startYear, endYear sql.NullInt64
	err := s.db.QueryRow(query).Scan(&baseV52, &baseV53, &timeoutSeconds,
		&refreshCron, &startYear, &endYear)
	if err == sql.ErrNoRows {
		return &PVGISData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pvgis config: %w", err)
	}

	cfg.BaseURLV52 = baseV52.String
	cfg.BaseURLV53 = baseV53.String
	cfg.TimeoutSeconds = int(timeoutSeconds.Int64)
	cfg.RefreshCron = refreshCron.String
	cfg.StartYear = int(startYear.Int64)
	cfg.EndYear = int(endYear.Int64)
	return &cfg, nil
}

// GetSites returns the cached analysis sites from the database
func (s *SQLiteProvider) GetSites() ([]SiteData, error) {
	query := `
		SELECT name, latitude, longitude, month, day, slope, azimuth
		FROM sites
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var sites []SiteData
	for rows.Next() {
		var site SiteData
		var slope, azimuth sql.NullInt64

		err := rows.Scan(&site.Name, &site.Latitude, &site.Longitude,
			&site.Month, &site.Day, &slope, &azimuth)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}

		site.Slope = int(slope.Int64)
		site.Azimuth = int(azimuth.Int64)
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
