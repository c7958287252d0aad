// Command moodledger-train builds the frozen category model from a CSV of
// labeled descriptions. Each row is "description,category"; an optional
// header row is skipped. The server loads the resulting artifact at
// startup and never retrains it.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"moodledger/internal/classify"
	applog "moodledger/internal/log"
)

func main() {
	logger := applog.New(applog.Config{Component: applog.ComponentClassify})
	applog.SetDefault(logger)

	input := flag.String("input", "", "CSV file of description,category rows")
	output := flag.String("output", "./model/category_predictor.gob", "where to write the trained model")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: moodledger-train -input labeled.csv [-output model.gob]")
		os.Exit(2)
	}

	samples, err := readSamples(*input)
	if err != nil {
		logger.Error("Failed to read training data", "error", err, "path", *input)
		os.Exit(1)
	}

	model, err := classify.Train(samples)
	if err != nil {
		logger.Error("Training failed", "error", err)
		os.Exit(1)
	}

	if err := model.Freeze(*output); err != nil {
		logger.Error("Failed to write model", "error", err, "path", *output)
		os.Exit(1)
	}

	slog.Info("Model trained",
		"samples", len(samples),
		"labels", model.Labels(),
		"output", *output)
}

func readSamples(path string) ([]classify.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var samples []classify.Sample
	for i, row := range rows {
		desc := strings.TrimSpace(row[0])
		category := strings.TrimSpace(row[1])
		if i == 0 && strings.EqualFold(desc, "description") {
			continue
		}
		samples = append(samples, classify.Sample{Description: desc, Category: category})
	}
	return samples, nil
}
