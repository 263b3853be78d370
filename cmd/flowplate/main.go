package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"flowplate/internal/config"
	"flowplate/internal/exporter"
	"flowplate/internal/infrastructure"
	"flowplate/internal/services"
	"flowplate/pkg/contracts/domain"
)

// stringList collects a repeatable flag value.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var dataFiles stringList
	samplePath := flag.String("sample", "", "sample map spreadsheet (.xlsx)")
	groupPath := flag.String("group", "", "group map spreadsheet (.xlsx)")
	flag.Var(&dataFiles, "data", "measurement spreadsheet (.xlsx); repeat for multiple files")
	metric := flag.String("metric", "", "metric column to extract (empty: list available metrics and exit)")
	mode := flag.String("mode", "individual", "aggregation mode: individual, mean_sd, mean_sem")
	layout := flag.String("layout", "standard", "output layout: standard, single_row, xy")
	axis := flag.String("axis", "sample", "filter axis: sample or group")
	labels := flag.String("labels", "All", "comma-separated labels to keep on the filter axis")
	out := flag.String("out", "", "destination file (.csv appended if missing); empty writes to stdout")
	toClipboard := flag.Bool("clipboard", false, "copy the result to the clipboard instead of writing a file")
	header := flag.Bool("header", true, "include the header row")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	if *samplePath == "" || *groupPath == "" || len(dataFiles) == 0 {
		fmt.Fprintln(os.Stderr, "usage: flowplate -sample map.xlsx -group map.xlsx -data run.xlsx [-data run2.xlsx ...] -metric NAME [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx := context.Background()
	service := services.NewSessionService(logger)
	id := service.CreateSession(ctx)

	if _, err := service.LoadSampleMap(ctx, id, *samplePath); err != nil {
		fail(logger, "sample map load failed", err)
	}
	if _, err := service.LoadGroupMap(ctx, id, *groupPath); err != nil {
		fail(logger, "group map load failed", err)
	}
	if _, err := service.LoadMeasurements(ctx, id, dataFiles...); err != nil {
		fail(logger, "measurement load failed", err)
	}

	if *metric == "" {
		metrics, err := service.Metrics(ctx, id)
		if err != nil {
			fail(logger, "failed to list metrics", err)
		}
		for _, m := range metrics {
			fmt.Println(m)
		}
		return
	}

	req := services.ProcessRequest{
		Metric:       *metric,
		Mode:         domain.AggregationMode(*mode),
		Layout:       domain.OutputLayout(*layout),
		FilterAxis:   domain.FilterAxis(*axis),
		FilterLabels: strings.Split(*labels, ","),
	}

	var sink exporter.Sink
	switch {
	case *toClipboard:
		sink = exporter.ClipboardSink{}
	case *out != "":
		sink = exporter.NewFileSink(*out, logger)
	default:
		sink = stdoutSink{}
	}

	if err := service.Export(ctx, id, req, *header, sink); err != nil {
		fail(logger, "processing failed", err)
	}
}

// stdoutSink writes the blob to standard output.
type stdoutSink struct{}

func (stdoutSink) Write(blob string) error {
	_, err := fmt.Println(blob)
	return err
}

func fail(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
