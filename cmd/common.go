package cmd

import (
	"github.com/algolovers/newsletter-console-services/db"
	"github.com/algolovers/newsletter-console-services/internal/appconfig"
	"github.com/rs/zerolog/log"
)

var (
	appCfg       *appconfig.Config
	newsletterDB *db.NewsletterDB
)

// commonSetUp sets the log level, loads the config and connects to the database.
func commonSetUp() {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	newsletterDB, err = db.NewNewsletterDB(appCfg.Database.Driver, appCfg.Database.Source, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize NewsletterDB")
	}
}
