// HTTP API server exposing scraped articles, indicators, and digests.
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"prism-cti/internal/api"
	"prism-cti/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("load .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load configuration: %v", err)
	}

	var allowedOrigins []string
	if origins := strings.TrimSpace(os.Getenv("PRISM_ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	server, err := api.NewServer(api.Config{
		DBPath:         cfg.Database.Path,
		AllowedOrigins: allowedOrigins,
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}
	defer server.Close()

	listen := cfg.Server.Listen
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		listen = ":" + port
	}

	logrus.Infof("starting prism api on %s", listen)
	if err := server.Router().Run(listen); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
