package main

import (
	"gallerybot/services"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := services.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	store, err := services.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	stats := services.NewStatsAggregator(cfg.DataDir, store)
	stats.Recompute()

	bot, err := services.NewBot(cfg, store, stats)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	_, err = services.NewApi(cfg, store, stats, bot)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	if cfg.Mode == services.ModeWebhook {
		if err = bot.SetupWebhook(); err != nil {
			log.Fatal().Err(err).Send()
		}
	} else {
		bot.StartPolling()
	}

	log.Info().Msgf("%s listening on :%s (%s mode)", services.ServiceName, cfg.Port, cfg.Mode)

	select {}
}
