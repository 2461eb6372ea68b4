package gather

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// Compile-time interface check.
var _ Gatherer = (*UniverseGatherer)(nil)

// UniverseGatherer fetches the list of active, tradable US equities from the
// Alpaca assets API and writes it to a text file, one symbol per line. The
// file seeds the symbol list for the daily-bar gatherer.
type UniverseGatherer struct {
	client *alpaca.Client
	path   string
	log    *slog.Logger
}

// NewUniverseGatherer creates a gatherer writing the universe file to path.
func NewUniverseGatherer(apiKey, apiSecret, path string) *UniverseGatherer {
	return &UniverseGatherer{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		path: path,
		log:  slog.Default().With("gatherer", "universe"),
	}
}

// Name returns the gatherer identifier.
func (g *UniverseGatherer) Name() string { return "universe" }

// Run fetches the asset list and replaces the universe file.
func (g *UniverseGatherer) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	assets, err := g.client.GetAssets(alpaca.GetAssetsRequest{
		Status:     "active",
		AssetClass: "us_equity",
	})
	if err != nil {
		return fmt.Errorf("GetAssets: %w", err)
	}

	var symbols []string
	for _, a := range assets {
		if !a.Tradable {
			continue
		}
		symbols = append(symbols, strings.ToUpper(a.Symbol))
	}
	sort.Strings(symbols)

	if err := WriteUniverseFile(g.path, symbols); err != nil {
		return err
	}
	g.log.Info("universe written", "path", g.path, "symbols", len(symbols))
	return nil
}

// WriteUniverseFile writes symbols to path, one per line.
func WriteUniverseFile(path string, symbols []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(symbols, "\n")+"\n"), 0o644)
}

// ReadUniverseFile reads a symbol-per-line universe file, skipping blank
// lines.
func ReadUniverseFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var symbols []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		symbols = append(symbols, strings.ToUpper(line))
	}
	return symbols, nil
}
