package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/antoniomachine/bigml/config"
	"github.com/antoniomachine/bigml/docstore"
	"github.com/antoniomachine/bigml/model"
	"github.com/spf13/cobra"
)

type importCmdConfig struct {
	*rootCmdConfig
	files []string
}

func importCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cfg := &importCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Store resource documents",
		Long:  `Put resource documents into the configured document store under their resource ids, so predictions can refer to them by id`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg.files = args
			cfg.exitCode = cfg.run()
		},
	}
	return cmd
}

/*
checkImportBackend returns an error if documents put in the store
selected by the configuration would not outlive the command.
*/
func checkImportBackend(store config.Store) error {
	if store.Backend == config.BackendMemory {
		return fmt.Errorf("the %s store backend keeps documents only while the command runs; configure a persistent backend (%s, %s, %s, %s, %s or %s) to import documents",
			config.BackendMemory, config.BackendDir, config.BackendRedis, config.BackendBolt,
			config.BackendSQLite, config.BackendPostgres, config.BackendMongo)
	}
	return nil
}

func (icc *importCmdConfig) run() int {
	cfg, logger, err := icc.Setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err = checkImportBackend(cfg.Store); err != nil {
		logger.Error().Err(err).Msg("cannot import documents")
		return 1
	}
	ctx := icc.Context()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return 2
	}
	defer store.Close(ctx)
	var failed int
	for _, path := range icc.files {
		id, err := importDocument(ctx, store, path)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("cannot import document")
			failed++
			continue
		}
		logger.Info().Str("file", path).Str("resource", id).Msg("document imported")
	}
	if failed > 0 {
		return 3
	}
	return 0
}

func importDocument(ctx context.Context, store docstore.Store, path string) (string, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %v", err)
	}
	doc, err := model.ParseDocument(data)
	if err != nil {
		return "", err
	}
	if _, err = doc.Kind(); err != nil {
		return "", err
	}
	if err = store.Put(ctx, doc.Resource, data); err != nil {
		return "", fmt.Errorf("storing %s: %v", doc.Resource, err)
	}
	return doc.Resource, nil
}
