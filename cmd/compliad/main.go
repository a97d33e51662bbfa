package main

import (
	"flag"
	"os"
	"runtime/debug"

	"github.com/bearslyricattack/CompliAd/internal/app"
	"github.com/bearslyricattack/CompliAd/pkg/logger"
	_ "github.com/bearslyricattack/CompliAd/plugins/handle/recorder"
	_ "github.com/bearslyricattack/CompliAd/plugins/handle/webhook"
)

func main() {
	debug.SetTraceback("all")
	os.Setenv("GOTRACEBACK", "all")

	logger.Init()
	log := logger.GetLogger()

	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	log.Info("Starting CompliAd", logger.Fields{
		"version": "1.0.0",
		"config":  *configPath,
	})

	if err := app.Run(*configPath); err != nil {
		log.Fatal("Application failed", logger.Fields{
			"error": err.Error(),
		})
	}
}
