package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/antoniomachine/bigml/config"
	"github.com/antoniomachine/bigml/docstore"
	"github.com/antoniomachine/bigml/docstore/backend"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose    bool
	configPath string
	ctx        context.Context
	cancelFunc context.CancelFunc
	// exitCode is set by the command that ran
	exitCode int
}

func main() {
	config := &rootCmdConfig{}
	err := cliParser(config).Execute()
	config.Cancel()
	if err != nil {
		os.Exit(1)
	}
	os.Exit(config.exitCode)
}

func cliParser(config *rootCmdConfig) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bigml",
		Short: "bigml scores records with local copies of BigML models",
		Long:  `A tool to make predictions offline with model, ensemble, logistic regression and deepnet documents downloaded from BigML, and to inspect trees and association rules`,
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log debug messages")
	rootCmd.PersistentFlags().StringVarP(&(config.configPath), "config", "c", "", "path to a YAML configuration file")
	rootCmd.AddCommand(
		versionCmd(),
		predictCmd(config),
		traverseCmd(config),
		fieldsCmd(config),
		combineCmd(config),
		rulesCmd(config),
		importCmd(config),
	)
	return rootCmd
}

/*
Setup loads the configuration and builds the logger every command
reports on.
*/
func (rcc *rootCmdConfig) Setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(rcc.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, newLogger(rcc.verbose, cfg.Log.Level), nil
}

// Context returns a context cancelled on SIGINT or SIGTERM.
func (rcc *rootCmdConfig) Context() context.Context {
	if rcc.ctx == nil {
		rcc.ctx, rcc.cancelFunc = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
	return rcc.ctx
}

// Cancel releases the context returned by Context, if any.
func (rcc *rootCmdConfig) Cancel() {
	if rcc.cancelFunc != nil {
		rcc.cancelFunc()
	}
}

/*
openStore opens the document store the configuration selects, logging
the failure if it cannot.
*/
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (docstore.Store, error) {
	store, err := backend.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.Store.Backend).Msg("cannot open document store")
		return nil, err
	}
	logger.Debug().Str("backend", cfg.Store.Backend).Msg("document store open")
	return store, nil
}
