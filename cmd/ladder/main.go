// Command ladder runs order-laddering bots against a tick source using the
// built-in paper venue, and prints configuration schemas for the chart UI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/ladder-trading/internal/clock"
	"github.com/rxtech-lab/ladder-trading/internal/execution"
	"github.com/rxtech-lab/ladder-trading/internal/logger"
	"github.com/rxtech-lab/ladder-trading/internal/orchestrator"
	"github.com/rxtech-lab/ladder-trading/internal/types"
	"github.com/rxtech-lab/ladder-trading/pkg/schema"
	"github.com/rxtech-lab/ladder-trading/pkg/tickfeed"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// botEntry couples one bot configuration with its drawn lines.
type botEntry struct {
	ID     string          `yaml:"id"`
	Config types.BotConfig `yaml:"config"`
	Lines  []types.RawLine `yaml:"lines"`
}

// harnessConfig is the YAML file format consumed by the run command.
type harnessConfig struct {
	Bots []botEntry `yaml:"bots"`
}

func loadHarnessConfig(path string) (*harnessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config harnessConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(config.Bots) == 0 {
		return nil, fmt.Errorf("config file declares no bots")
	}

	return &config, nil
}

// buildSource selects the tick source from CLI flags.
func buildSource(cmd *cli.Command) (tickfeed.Source, int, error) {
	switch cmd.String("source") {
	case "csv":
		path := cmd.String("csv")
		if path == "" {
			return nil, 0, fmt.Errorf("--csv is required for the csv source")
		}

		source := tickfeed.NewCSVSource(path, cmd.String("symbol"))

		count, err := source.Count()
		if err != nil {
			return nil, 0, err
		}

		return source, count, nil
	case "websocket":
		url := cmd.String("url")
		if url == "" {
			return nil, 0, fmt.Errorf("--url is required for the websocket source")
		}

		return tickfeed.NewWebSocketSource(url), 0, nil
	case "binance":
		symbol := cmd.String("symbol")
		if symbol == "" {
			return nil, 0, fmt.Errorf("--symbol is required for the binance source")
		}

		return tickfeed.NewBinanceSource(symbol), 0, nil
	default:
		return nil, 0, fmt.Errorf("unsupported source: %s", cmd.String("source"))
	}
}

// runAction wires the orchestrator, the paper venue, and the chosen tick
// source together and streams until the feed ends or the user interrupts.
func runAction(ctx context.Context, cmd *cli.Command) error {
	harness, err := loadHarnessConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	source, tickCount, err := buildSource(cmd)
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync() //nolint:errcheck // best-effort flush on exit

	systemClock := clock.NewSystemClock()
	router := execution.NewPaperRouter(execution.PaperRouterConfig{
		FillChunk: cmd.Int("fill-chunk"),
	}, systemClock, appLogger)

	// Print lifecycle events and order placements as they happen.
	onBotEvent := orchestrator.OnBotEventCallback(func(event types.BotEvent) {
		fmt.Printf("[%s] %s: %s (%s)\n",
			event.Time.Format("15:04:05"), event.BotID, event.Type, event.Reason.Reason)
	})
	onOrderPlaced := orchestrator.OnOrderPlacedCallback(func(botID string, order types.Order) {
		fmt.Printf("Order placed by %s: %s %s %d @ %.4f\n",
			botID, order.Side, order.Symbol, order.Quantity+order.FilledQuantity, order.Price)
	})
	onError := orchestrator.OnErrorCallback(func(err error) {
		fmt.Printf("Error: %v\n", err)
	})

	callbacks := orchestrator.Callbacks{
		OnBotEvent:     &onBotEvent,
		OnOrderPlaced:  &onOrderPlaced,
		OnStatusChange: nil,
		OnError:        &onError,
	}

	orch := orchestrator.NewOrchestrator(router, systemClock, appLogger, callbacks)

	// Route ticks by symbol to every bot trading it.
	botsBySymbol := make(map[string][]string)

	for _, entry := range harness.Bots {
		if err := orch.UpsertBot(entry.ID, entry.Config); err != nil {
			return fmt.Errorf("failed to configure bot %s: %w", entry.ID, err)
		}

		if err := orch.AssignLines(entry.ID, entry.Lines); err != nil {
			return fmt.Errorf("failed to assign lines for bot %s: %w", entry.ID, err)
		}

		if err := orch.Start(entry.ID); err != nil {
			return fmt.Errorf("failed to start bot %s: %w", entry.ID, err)
		}

		botsBySymbol[entry.Config.Symbol] = append(botsBySymbol[entry.Config.Symbol], entry.ID)
	}

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// One ticker drives every bot's scheduled updates.
	go func() {
		_ = orch.RunTicker(runCtx, time.Second)
	}()

	var bar *progressbar.ProgressBar
	if tickCount > 0 {
		bar = progressbar.Default(int64(tickCount), "replaying ticks")
	}

	for tick, err := range source.Stream(runCtx) {
		if err != nil {
			return fmt.Errorf("tick feed failed: %w", err)
		}

		router.ProcessTick(tick)

		for _, botID := range botsBySymbol[tick.Symbol] {
			orch.RouteTick(botID, tick)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	fmt.Println("\nFinal status:")

	for _, botID := range orch.BotIDs() {
		status, err := orch.Status(botID)
		if err != nil {
			continue
		}

		out, err := yaml.Marshal(status)
		if err != nil {
			continue
		}

		fmt.Printf("--- %s ---\n%s", botID, string(out))
	}

	return nil
}

// schemaAction prints the JSON schema for the bot configuration so the chart
// UI can render config forms.
func schemaAction(_ context.Context, _ *cli.Command) error {
	out, err := schema.ToJSONSchema(&types.BotConfig{}) //nolint:exhaustruct // empty config for schema generation
	if err != nil {
		return err
	}

	fmt.Println(out)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "ladder",
		Usage: "Run order-laddering bots against a tick source",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run bots from a YAML harness config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML harness config",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Tick source: csv, websocket, binance",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Path to a CSV tick file (csv source)",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Quote stream websocket URL (websocket source)",
					},
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "Symbol override for csv, or stream symbol for binance",
					},
					&cli.IntFlag{
						Name:  "fill-chunk",
						Usage: "Max size filled per crossing tick on the paper venue (0 fills all at once)",
						Value: 0,
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the bot configuration JSON schema",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
