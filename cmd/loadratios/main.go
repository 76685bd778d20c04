// Command loadratios cleans the bankruptcy ratio file and replaces the stored dataset with it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/epeers/bankruptcy/config"
	"github.com/epeers/bankruptcy/internal/database"
	"github.com/epeers/bankruptcy/internal/repository"
	"github.com/epeers/bankruptcy/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	file   string
	label  string
	dryRun bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "loadratios",
		Short: "Clean the ratio dataset and reload it into PostgreSQL",
		Long: `loadratios reads the bankruptcy ratio file (CSV or XLSX), fills missing values
with column medians, removes outlier rows column by column, and replaces the
companies and financial_ratios tables with the result in a single transaction.

With --dry-run the file is only read and cleaned; the database is not touched.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOffline()
			if err := cfg.ConfigureLogging(); err != nil {
				return err
			}
			if opts.file == "" {
				opts.file = cfg.DataFile
			}
			if opts.label == "" {
				opts.label = cfg.LabelColumn
			}
			return run(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "dataset to load (default $DATA_FILE or data/data.csv)")
	cmd.Flags().StringVar(&opts.label, "label", "", "bankruptcy label column (default $LABEL_COLUMN or \"Bankrupt?\")")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "clean the file and print the summary without loading it")
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, opts options) error {
	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")

	if opts.dryRun {
		svc := services.NewLoadService(nil, nil, opts.label)
		_, summary, err := svc.Prepare(opts.file)
		if err != nil {
			return err
		}
		return out.Encode(summary)
	}

	if cfg.PGURL == "" {
		return fmt.Errorf("PG_URL environment variable is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	svc := services.NewLoadService(repository.NewCompanyRepository(db.Pool), nil, opts.label)
	result, err := svc.Reload(ctx, opts.file)
	if err != nil {
		return err
	}
	return out.Encode(result)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
