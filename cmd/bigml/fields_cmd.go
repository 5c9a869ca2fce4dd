package main

import (
	"fmt"
	"os"

	"github.com/antoniomachine/bigml/model"
	"github.com/spf13/cobra"
)

type fieldsCmdConfig struct {
	*rootCmdConfig
	modelRef string
}

func fieldsCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &fieldsCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the fields of a model",
		Long:  `List the name and optype of every field of a model, ensemble, logistic regression or deepnet in column order`,
		Run: func(cmd *cobra.Command, args []string) {
			config.exitCode = config.run()
		},
	}
	cmd.Flags().StringVarP(&(config.modelRef), "model", "m", "", "resource id (kind/id) of a model in the document store, or path to a model document, or - to read the document from stdin (required)")
	return cmd
}

func (fcc *fieldsCmdConfig) Validate() error {
	if fcc.modelRef == "" {
		return fmt.Errorf("required model flag was not set")
	}
	return nil
}

func (fcc *fieldsCmdConfig) run() int {
	err := fcc.Validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, logger, err := fcc.Setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx := fcc.Context()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return 2
	}
	defer store.Close(ctx)
	ref, err := parseReference(fcc.modelRef)
	if err != nil {
		logger.Error().Err(err).Msg("invalid model reference")
		return 1
	}
	d, err := model.New(ctx, ref, &model.StoreResolver{Store: store}, model.WithLogger(logger))
	if err != nil {
		logger.Error().Err(err).Msg("cannot build local model")
		return 2
	}
	if tm, ok := d.Evaluator.(*model.TreeModel); ok {
		_, err = tm.Tree().ListFields(os.Stdout, nil)
	} else {
		for _, f := range d.Fields().Sorted(nil) {
			if _, err = fmt.Printf("[%-32s: %s]\n", f.Name, f.Optype); err != nil {
				break
			}
		}
	}
	if err != nil {
		logger.Error().Err(err).Msg("cannot list fields")
		return 3
	}
	return 0
}
