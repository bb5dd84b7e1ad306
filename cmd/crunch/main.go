package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/crunchfoods/crunch-cli/internal/cli"
	"github.com/crunchfoods/crunch-cli/internal/config"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
	"github.com/crunchfoods/crunch-cli/internal/gateway/geo"
)

var version = "dev"

const (
	defaultHTTPMinInterval = 150 * time.Millisecond

	directoryURLEnv    = "CRUNCH_DIRECTORY_URL"
	directoryKeyEnv    = "CRUNCH_DIRECTORY_KEY"
	mapboxTokenEnv     = "CRUNCH_MAPBOX_TOKEN"
	httpMinIntervalEnv = "CRUNCH_HTTP_MIN_INTERVAL_MS"
)

func main() {
	// Local .env is optional; hosted defaults cover the public directory.
	_ = godotenv.Load()

	store, err := config.NewStore()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	deps := cli.Dependencies{
		Directory: directory.NewClient(directoryOptions()...),
		Maps:      geo.NewClient(os.Getenv(mapboxTokenEnv)),
		Store:     store,
		Version:   version,
	}

	exitCode := cli.Execute(context.Background(), os.Args[1:], deps, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

func directoryOptions() []directory.Option {
	opts := []directory.Option{
		directory.WithRequestMinInterval(resolveRequestMinInterval()),
	}
	if base := strings.TrimSpace(os.Getenv(directoryURLEnv)); base != "" {
		base = strings.TrimRight(base, "/")
		opts = append(opts, directory.WithEndpoints(directory.Endpoints{
			Rest: base + "/rest/v1",
			Auth: base + "/auth/v1",
		}))
	}
	if key := strings.TrimSpace(os.Getenv(directoryKeyEnv)); key != "" {
		opts = append(opts, directory.WithAPIKey(key))
	}
	return opts
}

func resolveRequestMinInterval() time.Duration {
	raw := strings.TrimSpace(os.Getenv(httpMinIntervalEnv))
	if raw == "" {
		return defaultHTTPMinInterval
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return defaultHTTPMinInterval
	}
	return time.Duration(ms) * time.Millisecond
}
