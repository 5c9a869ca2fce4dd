package main

import (
	"fmt"
	"os"

	"github.com/antoniomachine/bigml/association"
	"github.com/antoniomachine/bigml/dataset"
	"github.com/spf13/cobra"
)

type rulesCmdConfig struct {
	*rootCmdConfig
	associationInput string
	format           string
	describe         bool
}

func rulesCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &rulesCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Export association rules",
		Long:  `Read the rules of an association document and write them as CSV rows or JSON objects, or describe them with their item names`,
		Run: func(cmd *cobra.Command, args []string) {
			config.exitCode = config.run()
		},
	}
	cmd.Flags().StringVarP(&(config.associationInput), "association", "a", "", "path to an association document in JSON, or - for stdin (required)")
	cmd.Flags().StringVarP(&(config.format), "format", "f", string(association.FormatCSV), "export format: csv or json")
	cmd.Flags().BoolVarP(&(config.describe), "describe", "d", false, "print every rule with the names of its items instead of exporting it")
	return cmd
}

func (rcc *rulesCmdConfig) Validate() error {
	if rcc.associationInput == "" {
		return fmt.Errorf("required association flag was not set")
	}
	switch association.Format(rcc.format) {
	case association.FormatCSV, association.FormatJSON:
	default:
		return fmt.Errorf("unknown format %q", rcc.format)
	}
	return nil
}

func (rcc *rulesCmdConfig) run() int {
	err := rcc.Validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	_, logger, err := rcc.Setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	path := rcc.associationInput
	if path == "-" {
		path = ""
	}
	f, err := dataset.Open(path)
	if err != nil {
		logger.Error().Err(err).Msg("cannot open association")
		return 2
	}
	defer f.Close()
	a, err := association.ReadAssociation(f)
	if err != nil {
		logger.Error().Err(err).Msg("cannot read association")
		return 2
	}
	logger.Debug().Int("rules", len(a.Rules)).Int("items", len(a.Items)).Msg("association read")
	if rcc.describe {
		for _, r := range a.Rules {
			fmt.Printf("%s: %s\n", r.ID, r.Describe(a.Items))
		}
		return 0
	}
	if err = association.Write(os.Stdout, a.Rules, association.Format(rcc.format)); err != nil {
		logger.Error().Err(err).Msg("cannot export rules")
		return 3
	}
	return 0
}
