package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
)

func configPath() string {
	if path := os.Getenv("NAV_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// setup loads the map and builds the server. No request is served until the
// graph is complete.
func setup(cfg *Config) (*Server, error) {
	records, err := LoadMapFile(cfg.Map.File, MapFormat(cfg.Map.Format))
	if err != nil {
		return nil, err
	}

	graph := BuildGraph(records, cfg.GraphOptions())

	session, err := NewNavigationSession(graph, cfg.Navigation.StartNode, cfg.Navigation.Heading, cfg.Navigation.Turns)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return NewServer(graph, session, cfg.Navigation.ArrivalRadius), nil
}

func main() {
	// A missing .env is normal; the config file and defaults still apply
	_ = godotenv.Load()

	cfg, err := LoadConfig(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := InitLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	server, err := setup(cfg)
	if err != nil {
		Logger.Fatal().Err(err).Str("map", cfg.Map.File).Msg("failed to start")
	}

	Logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("start", cfg.Navigation.StartNode).
		Int("nodes", server.graph.Len()).
		Msg("campus navigator starting")
	Logger.Info().Msg("endpoints: GET /health, GET /session, POST /start, POST /heading, " +
		"POST /navigate, POST /advance, POST /reached, GET /nearest, GET /map/lines, GET /map/geojson")

	if err := http.ListenAndServe(cfg.Server.Addr, server.Routes()); err != nil {
		Logger.Fatal().Err(err).Msg("server stopped")
	}
}
