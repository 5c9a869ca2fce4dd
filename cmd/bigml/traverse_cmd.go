package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/field/yaml"
	"github.com/antoniomachine/bigml/model"
	"github.com/antoniomachine/bigml/tree"
	treejson "github.com/antoniomachine/bigml/tree/json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type traverseCmdConfig struct {
	*rootCmdConfig
	treeInput     string
	metadataInput string
	input         string
	show          bool
}

func traverseCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &traverseCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "traverse",
		Short: "Walk a decision tree with a record",
		Long:  `Load a decision tree from a model document or a bare tree document and report how deep a record descends into it and the rules it satisfies on the way`,
		Run: func(cmd *cobra.Command, args []string) {
			config.exitCode = config.run()
		},
	}
	cmd.Flags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a model document or tree document in JSON (required)")
	cmd.Flags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YAML file describing the fields of a bare root node document")
	cmd.Flags().StringVarP(&(config.input), "input", "i", "", "JSON object with the values of the record to walk the tree with, keyed by field name or id")
	cmd.Flags().BoolVarP(&(config.show), "show", "s", false, "print the tree")
	return cmd
}

func (tcc *traverseCmdConfig) Validate() error {
	if tcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if tcc.input == "" && !tcc.show {
		return fmt.Errorf("either the input or the show flag must be set")
	}
	return nil
}

/*
loadTree reads the file at path as a model document, as a root node
document described by the field metadata at metadataPath when one is
given, or as a tree document with "fields" and "root" keys otherwise.
*/
func loadTree(path, metadataPath string, logger zerolog.Logger) (*tree.Tree, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree in JSON from %s: %v", path, err)
	}
	if doc, err := model.ParseDocument(data); err == nil {
		if kind, _ := doc.Kind(); kind == model.KindModel {
			logger.Debug().Str("resource", doc.Resource).Msg("reading tree from model document")
			m, err := model.NewTreeModel(doc, model.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			return m.Tree(), nil
		}
	}
	if metadataPath != "" {
		var fields field.Fields
		logger.Debug().Str("metadata", metadataPath).Msg("reading fields from metadata")
		fields, err = yaml.ReadFieldsFromFile(metadataPath)
		if err != nil {
			return nil, err
		}
		return treejson.DecodeTreeWithFields(data, fields)
	}
	return treejson.DecodeTree(data)
}

func (tcc *traverseCmdConfig) run() int {
	err := tcc.Validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	_, logger, err := tcc.Setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	t, err := loadTree(tcc.treeInput, tcc.metadataInput, logger)
	if err != nil {
		logger.Error().Err(err).Str("tree", tcc.treeInput).Msg("cannot load tree")
		return 2
	}
	logger.Debug().Int("depth", t.MaxDepth()).Int("fields", len(t.Fields)).Msg("tree loaded")
	if tcc.show {
		fmt.Println(t)
	}
	if tcc.input == "" {
		return 0
	}
	record := map[string]interface{}{}
	if err = json.Unmarshal([]byte(tcc.input), &record); err != nil {
		logger.Error().Err(err).Msg("cannot parse input record")
		return 1
	}
	record, err = t.Fields.Normalize(record)
	if err != nil {
		logger.Error().Err(err).Msg("invalid input record")
		return 3
	}
	depth, path := t.Traverse(record)
	out, _ := json.MarshalIndent(struct {
		Depth int      `json:"depth"`
		Path  []string `json:"path"`
	}{depth, path}, "", "  ")
	fmt.Println(string(out))
	return 0
}
