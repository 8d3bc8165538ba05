// Package restserver exposes the solar calculation chain and the PVGIS
// integration over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/solarwx/solarwx/internal/controllers/pvgis"
	"github.com/solarwx/solarwx/internal/log"
	"github.com/solarwx/solarwx/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	httpConfig     config.HTTPData
	Server         http.Server
	PVGIS          *pvgis.Controller
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new REST server controller. The PVGIS controller
// may be nil, in which case the /pvgis endpoints respond 503.
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, pvgisController *pvgis.Controller, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		PVGIS:          pvgisController,
		logger:         logger,
	}

	httpCfg, err := configProvider.GetHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading http configuration: %v", err)
	}
	ctrl.httpConfig = *httpCfg

	// If a listen address was not provided, listen on all interfaces
	if ctrl.httpConfig.ListenAddr == "" {
		logger.Info("http.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.httpConfig.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if ctrl.httpConfig.Port == 0 {
		logger.Info("http.port not provided; defaulting to 8080")
		ctrl.httpConfig.Port = 8080
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.httpConfig.ListenAddr, ctrl.httpConfig.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.httpConfig.Cert != "" && c.httpConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.httpConfig.Cert, c.httpConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(c.requestIDMiddleware)
	router.Use(c.loggingMiddleware)

	router.HandleFunc("/calculator/bird-model", c.handlers.BirdModel).Methods(http.MethodPost)
	router.HandleFunc("/calculator/bird-model/day", c.handlers.BirdModelDay).Methods(http.MethodPost)

	router.HandleFunc("/utils/julian-day", c.handlers.JulianDay).Methods(http.MethodPost)
	router.HandleFunc("/utils/pressure", c.handlers.Pressure).Methods(http.MethodPost)
	router.HandleFunc("/utils/solar-position", c.handlers.SolarPosition).Methods(http.MethodPost)
	router.HandleFunc("/utils/solar-position/batch", c.handlers.SolarPositionBatch).Methods(http.MethodPost)
	router.HandleFunc("/utils/sun-events", c.handlers.SunEvents).Methods(http.MethodPost)

	router.HandleFunc("/pvgis/day-average", c.handlers.DayAverage).Methods(http.MethodPost)
	router.HandleFunc("/pvgis/{endpoint}", c.handlers.Passthrough).Methods(http.MethodPost)

	router.HandleFunc("/health", c.handlers.Health).Methods(http.MethodGet)

	return router
}
