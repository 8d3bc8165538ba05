package pvgis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgtype"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solarwx/solarwx/internal/database"
	"github.com/solarwx/solarwx/internal/log"
	"github.com/solarwx/solarwx/pkg/config"
)

// defaultRefreshCron refreshes cached analyses shortly after midnight UTC,
// which is when PVGIS publishes database updates.
const defaultRefreshCron = "30 2 * * *"

// DayAverageRecord is a cached day-average analysis for a configured site.
// The full response payload is stored as JSONB so it can be served without
// recomputation.
type DayAverageRecord struct {
	gorm.Model

	Site     string       `gorm:"uniqueIndex:idx_site_day,not null"`
	Location string       `gorm:"not null"`
	Month    int          `gorm:"uniqueIndex:idx_site_day,not null"`
	Day      int          `gorm:"uniqueIndex:idx_site_day,not null"`
	Data     pgtype.JSONB `gorm:"type:jsonb;not null"`
}

func (DayAverageRecord) TableName() string {
	return "pvgis_day_averages"
}

// Controller keeps day-average analyses for the configured sites warm in the
// database. Analyses are fetched once at startup and then refreshed on a
// cron schedule.
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	Client         *Client
	DB             *database.Client
	scheduler      *cron.Cron
	logger         *zap.SugaredLogger
}

// NewController creates the PVGIS cache controller. The database client may
// be nil, in which case caching is disabled and analyses are always computed
// on demand.
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, client *Client, db *database.Client, logger *zap.SugaredLogger) (*Controller, error) {
	c := Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		Client:         client,
		DB:             db,
		logger:         logger,
	}

	if c.DB != nil {
		if err := c.CreateTables(); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// CreateTables creates or migrates the cache tables
func (c *Controller) CreateTables() error {
	if err := c.DB.DB.AutoMigrate(DayAverageRecord{}); err != nil {
		return fmt.Errorf("error creating or migrating day average record table: %v", err)
	}
	return nil
}

// StartController begins the initial cache fill and schedules periodic
// refreshes for all configured sites.
func (c *Controller) StartController() error {
	log.Info("Starting PVGIS controller...")

	if c.DB == nil {
		log.Info("No database configured; PVGIS caching disabled")
		return nil
	}

	sites, err := c.configProvider.GetSites()
	if err != nil {
		return fmt.Errorf("error getting sites: %v", err)
	}

	if len(sites) == 0 {
		log.Info("No cached analysis sites configured")
		return nil
	}

	log.Infof("Found %d cached analysis site(s)", len(sites))

	pvgisCfg, err := c.configProvider.GetPVGISConfig()
	if err != nil {
		return fmt.Errorf("error getting pvgis config: %v", err)
	}

	schedule := pvgisCfg.RefreshCron
	if schedule == "" {
		schedule = defaultRefreshCron
	}

	c.scheduler = cron.New()
	_, err = c.scheduler.AddFunc(schedule, func() {
		c.refreshAllSites(sites)
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %v", schedule, err)
	}

	// The scheduler only fires after the first interval elapses, so run the
	// initial fill now.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.refreshAllSites(sites)
	}()

	c.scheduler.Start()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		stopCtx := c.scheduler.Stop()
		<-stopCtx.Done()
	}()

	return nil
}

func (c *Controller) refreshAllSites(sites []config.SiteData) {
	for _, site := range sites {
		if err := c.refreshSite(site); err != nil {
			log.Errorf("error refreshing cached analysis for site %s: %v", site.Name, err)
		}
	}
}

func (c *Controller) refreshSite(site config.SiteData) error {
	pvgisCfg, err := c.configProvider.GetPVGISConfig()
	if err != nil {
		return err
	}

	startYear, endYear := pvgisCfg.StartYear, pvgisCfg.EndYear
	if startYear == 0 {
		startYear = 2005
	}
	if endYear == 0 {
		endYear = 2020
	}

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Minute)
	defer cancel()

	resp, err := c.Client.DayAverage(ctx, DayAverageRequest{
		Latitude:  site.Latitude,
		Longitude: site.Longitude,
		Month:     site.Month,
		Day:       site.Day,
		StartYear: startYear,
		EndYear:   endYear,
		Slope:     site.Slope,
		Azimuth:   site.Azimuth,
	})
	if err != nil {
		return err
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("could not marshal day average response to JSON: %v", err)
	}

	locationStr := fmt.Sprintf("%.6f,%.6f", site.Latitude, site.Longitude)

	// Upsert the cached record
	var existing DayAverageRecord
	err = c.DB.DB.Where("site = ? AND month = ? AND day = ?", site.Name, site.Month, site.Day).
		First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		record := DayAverageRecord{
			Site:     site.Name,
			Location: locationStr,
			Month:    site.Month,
			Day:      site.Day,
		}
		record.Data.Set(payload)
		err = c.DB.DB.Create(&record).Error
	} else if err == nil {
		existing.Location = locationStr
		existing.Data.Set(payload)
		err = c.DB.DB.Save(&existing).Error
	}
	if err != nil {
		return fmt.Errorf("error saving cached analysis for site %s: %v", site.Name, err)
	}

	log.Debugf("refreshed cached analysis for site %s (%02d-%02d)", site.Name, site.Month, site.Day)
	return nil
}

// CachedDayAverage returns the cached analysis payload for a site, or
// gorm.ErrRecordNotFound when no cached record exists.
func (c *Controller) CachedDayAverage(site string, month, day int) ([]byte, error) {
	if c.DB == nil {
		return nil, gorm.ErrRecordNotFound
	}

	var record DayAverageRecord
	err := c.DB.DB.Where("site = ? AND month = ? AND day = ?", site, month, day).
		First(&record).Error
	if err != nil {
		return nil, err
	}

	var payload []byte
	if err := record.Data.AssignTo(&payload); err != nil {
		return nil, fmt.Errorf("could not decode cached analysis payload: %v", err)
	}
	return payload, nil
}
