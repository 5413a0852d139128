package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/render"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

var version = "dev"

// globals shared by every subcommand.
type globals struct {
	catalogPath string
	noColor     bool
}

func (g *globals) load() (*catalog.Catalog, error) {
	cat, err := catalog.Load(g.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return cat, nil
}

func (g *globals) options() render.Options {
	return render.Options{UseColors: !g.noColor && !color.NoColor}
}

func newRootCommand() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:   "quotesctl",
		Short: "Compare gym equipment quotes from the terminal",
		Long: `quotesctl evaluates the quote catalog offline.

It resolves selection scenarios, checks custom weight vectors and explains
the scores behind each product without a running server.`,
		Version:      version,
		SilenceUsage: true,
	}

	defaultPath := os.Getenv("QUOTES_CATALOG_PATH")
	if defaultPath == "" {
		defaultPath = "data/catalog.json"
	}
	cmd.PersistentFlags().StringVar(&g.catalogPath, "catalog", defaultPath, "Path to the quote catalog")
	cmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newScenarioCommand(g))
	cmd.AddCommand(newScenariosCommand())
	cmd.AddCommand(newWeightsCommand(g))
	cmd.AddCommand(newVendorsCommand(g))
	cmd.AddCommand(newBreakdownCommand(g))
	cmd.AddCommand(newFrontierCommand(g))

	return cmd
}

// weightInput overlays raw entries on the default vector, the way the
// weight form starts out pre-filled.
func weightInput(raw map[string]string) (scoring.WeightVector, error) {
	merged := make(map[string]string, catalog.NumWeighted)
	for code, n := range scoring.DefaultWeights().Map() {
		merged[code] = strconv.Itoa(n)
	}
	for code, text := range raw {
		if c, err := catalog.ParseCriterion(code); err == nil {
			code = c.Code()
		}
		merged[code] = text
	}
	return scoring.ParseWeightInput(merged)
}

// customWeights validates a --weight flag set. An empty set keeps the
// catalog's precomputed scores.
func customWeights(raw map[string]string) (*scoring.Weights, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	v, err := weightInput(raw)
	if err != nil {
		return nil, err
	}
	return v.Validate()
}
