// Package app wires the netrag CLI's cobra command to the query
// orchestration pipeline.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	netragapp "github.com/netrag/netrag/internal/app"
	"github.com/netrag/netrag/internal/rag/orchestrator"
	"github.com/netrag/netrag/pkg/infra/app"
	reqlog "github.com/netrag/netrag/pkg/infra/logger"
	"github.com/netrag/netrag/pkg/utils/id"
)

const (
	// Name is the name of the application.
	Name = "netrag"

	commandDesc = `netrag is a retrieval-augmented query assistant for network device
inventories (FTTH OLTs, mobile network elements, broadband modems).

It combines a schema-aware context builder, a health rule engine, and a
document store of operational runbooks to answer natural-language questions
about device inventory, and falls back to the raw structured data whenever
no LLM is reachable.`
)

var (
	query       string
	region      string
	environment string
	limit       int
	withHealth  bool
)

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := netragapp.NewOptions()
	application := app.NewApp(
		app.WithName(Name),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
	RegisterQueryFlags(application.Command())

	return application
}

// run builds the query-orchestration App from opts and answers the query
// flag, printing the result as JSON to stdout.
func run(opts *netragapp.Options) app.RunFunc {
	return func() error {
		if query == "" {
			return fmt.Errorf("--query is required")
		}

		ctx := setupSignalContext()
		ctx = reqlog.WithRequestID(ctx, id.NewUUID())
		log := reqlog.GetLogger(ctx)

		netApp, err := netragapp.New(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to build application: %w", err)
		}
		defer netApp.Close()

		log.Infow("running query", "query", query, "region", region, "environment", environment)

		resp, err := netApp.Query(ctx, query, orchestrator.Flags{
			Region:      region,
			Environment: environment,
			Limit:       limit,
			WithHealth:  withHealth,
		})
		if err != nil {
			log.Errorw("query failed", "error", err.Error())
			return fmt.Errorf("query failed: %w", err)
		}

		encoded, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	}
}

// RegisterQueryFlags adds the flags a one-shot CLI query accepts, distinct
// from Options.AddFlags which covers the application's bootstrap config.
func RegisterQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&query, "query", "", "The natural-language question to ask (required).")
	cmd.Flags().StringVar(&region, "region", "", "Filter by region.")
	cmd.Flags().StringVar(&environment, "environment", "", "Filter by environment.")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of records to return (0 uses the configured default).")
	cmd.Flags().BoolVar(&withHealth, "with-health", false, "Evaluate health rules against returned records.")
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
