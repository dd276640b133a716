package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/mvtanalyzer/internal/dataset"
	"github.com/chrissnell/mvtanalyzer/internal/log"
	"github.com/chrissnell/mvtanalyzer/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	serverConfig   config.ServerData
	analysisConfig config.AnalysisData
	Server         http.Server
	Datasets       *dataset.Registry
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		logger:         logger,
	}

	// Load configuration
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	ctrl.serverConfig = cfgData.Server
	ctrl.analysisConfig = cfgData.Analysis
	ctrl.Datasets = dataset.NewRegistry(cfgData.Datasets)

	if _, err := ctrl.Datasets.Describe(cfgData.Analysis.DefaultDataset); err != nil {
		return nil, fmt.Errorf("default dataset is not configured: %w", err)
	}

	if (ctrl.serverConfig.Cert == "") != (ctrl.serverConfig.Key == "") {
		return nil, fmt.Errorf("server.cert and server.key must be set together")
	}

	logger.Infof("REST server configured with %d datasets: %v", len(ctrl.Datasets.Names()), ctrl.Datasets.Names())

	// Create handlers
	ctrl.handlers = NewHandlers(ctrl)

	// Set up router
	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.serverConfig.ListenAddr, ctrl.serverConfig.Port)
	ctrl.Server.Handler = router
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// Handler returns the HTTP handler serving all endpoints
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.serverConfig.Cert != "" && c.serverConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.serverConfig.Cert, c.serverConfig.Key); err != http.ErrServerClosed {
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/analyze", c.handlers.PostAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/datasets", c.handlers.GetDatasets).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{name}/analysis", c.handlers.GetDatasetAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{name}/chart", c.handlers.GetDatasetChart).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{name}/narration", c.handlers.GetDatasetNarration).Methods(http.MethodGet)

	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/debug/requests", c.handlers.GetRequestLog).Methods(http.MethodGet)

	return router
}
