package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/antoniomachine/bigml/batch"
	"github.com/antoniomachine/bigml/dataset"
	"github.com/antoniomachine/bigml/dataset/csv"
	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/metrics"
	"github.com/antoniomachine/bigml/model"
	"github.com/antoniomachine/bigml/prediction"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	modelRef     string
	input        string
	inputFile    string
	inputFormat  string
	outputFormat string
	normalize    bool
	workers      int
	metricsFile  string
}

type scored struct {
	Index int `json:"index"`
	*prediction.Record
	Error string `json:"error,omitempty"`
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict with a local model",
		Long:  `Resolve a model, ensemble, logistic regression or deepnet and use it to score one JSON record or every record in a CSV or JSON lines file`,
		Run: func(cmd *cobra.Command, args []string) {
			config.exitCode = config.run()
		},
	}
	cmd.Flags().StringVarP(&(config.modelRef), "model", "m", "", "resource id (kind/id) of a model in the document store, or path to a model document, or - to read the document from stdin (required)")
	cmd.Flags().StringVarP(&(config.input), "input", "i", "", "JSON object with the values of the record to score, keyed by field name or id")
	cmd.Flags().StringVarP(&(config.inputFile), "input-file", "f", "", "path to a CSV or JSON lines file with the records to score (- for stdin)")
	cmd.Flags().StringVar(&(config.inputFormat), "input-format", "", "format of the input file: csv or jsonl (guessed from the file extension by default)")
	cmd.Flags().StringVarP(&(config.outputFormat), "output-format", "o", "jsonl", "format of batch predictions: jsonl or csv")
	cmd.Flags().BoolVarP(&(config.normalize), "normalize", "n", false, "normalize the combined votes of ensembles by their total")
	cmd.Flags().IntVarP(&(config.workers), "workers", "w", 0, "number of concurrent workers for batch predictions (defaults to the configured batch workers)")
	cmd.Flags().StringVar(&(config.metricsFile), "metrics-file", "", "path to write prediction metrics to in the Prometheus text format")
	return cmd
}

func (pcc *predictCmdConfig) run() int {
	err := pcc.Validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, logger, err := pcc.Setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx := pcc.Context()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return 2
	}
	defer store.Close(ctx)
	ref, err := parseReference(pcc.modelRef)
	if err != nil {
		logger.Error().Err(err).Msg("invalid model reference")
		return 1
	}
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry)
	d, err := model.New(ctx, ref, &model.StoreResolver{Store: store}, model.WithLogger(logger), model.WithMetrics(m))
	if err != nil {
		logger.Error().Err(err).Msg("cannot build local model")
		return 2
	}
	opts := model.Options{Normalize: pcc.normalize}
	if pcc.input != "" {
		err = pcc.predictOne(d, opts)
	} else {
		workers := pcc.workers
		if workers == 0 {
			workers = cfg.Batch.Workers
		}
		runner := &batch.Runner{Predictor: d, Options: opts, Workers: workers, Logger: logger}
		err = pcc.predictBatch(ctx, runner, d.Fields())
	}
	if err != nil {
		logger.Error().Err(err).Msg("prediction failed")
		return 3
	}
	if pcc.metricsFile != "" {
		if err = prometheus.WriteToTextfile(pcc.metricsFile, registry); err != nil {
			logger.Error().Err(err).Msg("cannot write metrics")
			return 4
		}
	}
	return 0
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.modelRef == "" {
		return fmt.Errorf("required model flag was not set")
	}
	if (pcc.input == "") == (pcc.inputFile == "") {
		return fmt.Errorf("exactly one of the input and input-file flags must be set")
	}
	if pcc.modelRef == "-" && pcc.inputFile == "-" {
		return fmt.Errorf("model and input file cannot both be read from stdin")
	}
	switch pcc.inputFormat {
	case "", "csv", "jsonl":
	default:
		return fmt.Errorf("unknown input format %q", pcc.inputFormat)
	}
	switch pcc.outputFormat {
	case "jsonl", "csv":
	default:
		return fmt.Errorf("unknown output format %q", pcc.outputFormat)
	}
	if pcc.workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

func (pcc *predictCmdConfig) predictOne(p batch.Predictor, opts model.Options) error {
	record := dataset.Record{}
	if err := json.Unmarshal([]byte(pcc.input), &record); err != nil {
		return fmt.Errorf("parsing input record: %v", err)
	}
	r, err := p.Predict(record, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (pcc *predictCmdConfig) predictBatch(ctx context.Context, runner *batch.Runner, fields field.Fields) error {
	records, err := pcc.readRecords(fields)
	if err != nil {
		return err
	}
	runner.Logger.Info().Int("records", len(records)).Int("workers", runner.Workers).Msg("scoring records")
	results, err := runner.Run(ctx, records)
	if err != nil {
		return err
	}
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		runner.Logger.Warn().Int("failed", failed).Int("records", len(results)).Msg("some records could not be scored")
	}
	if pcc.outputFormat == "csv" {
		return writeCSVResults(ctx, os.Stdout, results)
	}
	return writeJSONResults(os.Stdout, results)
}

func (pcc *predictCmdConfig) readRecords(fields field.Fields) ([]dataset.Record, error) {
	path := pcc.inputFile
	if path == "-" {
		path = ""
	}
	format := pcc.inputFormat
	if format == "" {
		format = "jsonl"
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			format = "csv"
		}
	}
	f, err := dataset.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var records []dataset.Record
	collect := func(i int, r dataset.Record) (bool, error) {
		records = append(records, r)
		return true, nil
	}
	if format == "csv" {
		err = csv.ReadRecords(f, fields, collect)
	} else {
		err = dataset.ReadJSONLines(f, collect)
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func writeJSONResults(w io.Writer, results []batch.Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		s := scored{Index: r.Index, Record: r.Prediction}
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("writing prediction %d: %v", r.Index, err)
		}
	}
	return nil
}

func writeCSVResults(ctx context.Context, w io.Writer, results []batch.Result) error {
	cw, err := csv.NewWriter(w, []string{"index", "prediction", "confidence", "error"})
	if err != nil {
		return err
	}
	rows := make([]dataset.Record, len(results))
	for i, r := range results {
		row := dataset.Record{"index": r.Index}
		if r.Prediction != nil {
			row["prediction"] = r.Prediction.Output
			row["confidence"] = r.Prediction.Confidence
		}
		if r.Err != nil {
			row["error"] = r.Err.Error()
		}
		rows[i] = row
	}
	if _, err = cw.Write(ctx, rows); err != nil {
		return err
	}
	return cw.Flush()
}

/*
parseReference takes the value of a model flag and returns the reference
it stands for: "-" reads a document from stdin, an existing file is a
path reference and anything else must be a resource id.
*/
func parseReference(value string) (model.Reference, error) {
	if value == "-" {
		data, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			return model.Reference{}, fmt.Errorf("reading model document from stdin: %v", err)
		}
		return model.DocumentRef(data), nil
	}
	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		return model.PathRef(value), nil
	}
	if _, err := model.KindOf(value); err != nil {
		return model.Reference{}, fmt.Errorf("%q is neither a file nor a resource id: %v", value, err)
	}
	return model.ResourceRef(value), nil
}
