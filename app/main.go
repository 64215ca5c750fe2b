package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/ui"
)

type application struct {
	config    *Config
	logger    zerolog.Logger
	api       *apiclient.Client
	sessions  *session.Store
	templates *ui.Renderer
	limiter   *ipLimiter
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newApplication(cfg *Config, logger zerolog.Logger) (*application, error) {
	templates, err := ui.NewRenderer()
	if err != nil {
		return nil, err
	}

	api := apiclient.New(cfg.APIURL)

	return &application{
		config:    cfg,
		logger:    logger,
		api:       api,
		sessions:  session.NewStore(api, cfg.SessionTTL),
		templates: templates,
		limiter:   newIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}, nil
}
