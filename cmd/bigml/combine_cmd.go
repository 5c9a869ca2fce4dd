package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/antoniomachine/bigml/multivote"
	"github.com/spf13/cobra"
)

type combineCmdConfig struct {
	*rootCmdConfig
	votes     string
	normalize bool
}

func combineCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &combineCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Combine ensemble votes",
		Long:  `Add up a JSON list of vote vectors, one per ensemble member, into a single vector, optionally normalized by its total`,
		Run: func(cmd *cobra.Command, args []string) {
			config.exitCode = config.run()
		},
	}
	cmd.Flags().StringVar(&(config.votes), "votes", "", "JSON list of vote vectors, read from stdin if not set or -")
	cmd.Flags().BoolVarP(&(config.normalize), "normalize", "n", false, "divide the combined vector by its total")
	return cmd
}

func (ccc *combineCmdConfig) run() int {
	_, logger, err := ccc.Setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	data := []byte(ccc.votes)
	if ccc.votes == "" || ccc.votes == "-" {
		if data, err = ioutil.ReadAll(os.Stdin); err != nil {
			logger.Error().Err(err).Msg("cannot read votes")
			return 2
		}
	}
	var v interface{}
	if err = json.Unmarshal(data, &v); err != nil {
		logger.Error().Err(err).Msg("cannot parse votes")
		return 2
	}
	votes, err := multivote.Parse(v)
	if err != nil {
		logger.Error().Err(err).Msg("invalid votes")
		return 2
	}
	combined, err := votes.Combine(ccc.normalize)
	if err != nil {
		logger.Error().Err(err).Int("votes", votes.Len()).Msg("cannot combine votes")
		return 3
	}
	out, _ := json.Marshal(combined)
	fmt.Println(string(out))
	return 0
}
