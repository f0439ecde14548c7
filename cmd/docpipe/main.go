// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/ai/openai"
	"github.com/poiesic/docpipe/convert"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/knowledge"
	"github.com/poiesic/docpipe/pipeline"
	slogmulti "github.com/samber/slog-multi"
	"github.com/urfave/cli/v2"
)

// defaultExtensions covers the document and image formats the converter
// understands out of the box.
var defaultExtensions = []string{
	// Documents
	"pdf", "docx", "txt",
	// Images
	"png", "jpg", "jpeg", "gif", "bmp", "tiff", "webp",
}

func main() {
	app := &cli.App{
		Name:  "docpipe",
		Usage: "Convert documents to markdown, embed them, and upload them to a knowledge store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Also write JSON logs to this file",
			},
			&cli.StringFlag{
				Name:    "input-dir",
				Aliases: []string{"i"},
				Usage:   "Directory containing documents to process",
				Value:   "docs",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory to save markdown output",
				Value:   "output",
			},
			&cli.StringSliceFlag{
				Name:  "extensions",
				Usage: "File extensions to process",
				Value: cli.NewStringSlice(defaultExtensions...),
			},
			&cli.StringFlag{
				Name:  "converter-cmd",
				Usage: "External converter command invoked per file",
				Value: convert.DefaultCommand,
			},
			&cli.StringSliceFlag{
				Name:  "converter-arg",
				Usage: "Extra argument passed to the converter command (repeatable)",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of files to process between checkpoints",
				Value: 10,
			},
			&cli.IntFlag{
				Name:  "max-workers",
				Usage: "Maximum number of concurrent workers (0 = auto)",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "nomic-embed-text",
			},
			&cli.BoolFlag{
				Name:  "skip-embeddings",
				Usage: "Skip generating embedding sidecars",
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Knowledge store API URL for uploading files",
				Value: "http://localhost:3000",
			},
			&cli.StringFlag{
				Name:  "api-token",
				Usage: "Knowledge store API token",
			},
			&cli.StringFlag{
				Name:  "knowledge-id",
				Usage: "Knowledge collection to register uploaded files into",
			},
			&cli.BoolFlag{
				Name:  "skip-upload",
				Usage: "Skip uploading artifacts to the knowledge store",
			},
			&cli.DurationFlag{
				Name:  "register-delay",
				Usage: "Settle delay between upload and knowledge registration",
				Value: 10 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "hash-names",
				Usage: "Qualify artifact names with a source path hash to avoid base-name collisions",
			},
		},
		Before: setupLogger,
		Action: processCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func processCommand(c *cli.Context) error {
	finder := pipeline.NewFinder(c.StringSlice("extensions"))
	converter := convert.NewCommandConverter(c.String("converter-cmd"),
		convert.WithArgs(c.StringSlice("converter-arg")...))

	var embedder ai.Embedder = ai.NopEmbedder{}
	if !c.Bool("skip-embeddings") {
		cfg := ai.NewConfig(
			ai.WithHost(c.String("embedding-host")),
			ai.WithModel(c.String("embedding-model")),
		)
		var err error
		embedder, err = openai.NewEmbedder(cfg)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
	}

	opts := []pipeline.Option{
		pipeline.WithBatchSize(c.Int("batch-size")),
		pipeline.WithProgressOutput(os.Stderr),
		pipeline.WithRegisterDelay(c.Duration("register-delay")),
	}
	if workers := c.Int("max-workers"); workers > 0 {
		opts = append(opts, pipeline.WithPoolSize(workers))
	}
	if !c.Bool("skip-embeddings") {
		opts = append(opts, pipeline.WithEmbeddingModel(c.String("embedding-model")))
	}
	if c.Bool("hash-names") {
		opts = append(opts, pipeline.WithHashedNames())
	}

	if !c.Bool("skip-upload") {
		token := c.String("api-token")
		if token == "" {
			slog.Warn("api token not provided, file upload will be skipped")
		} else {
			clientOpts := []knowledge.ClientOption{}
			if id := c.String("knowledge-id"); id != "" {
				clientOpts = append(clientOpts, knowledge.WithKnowledgeID(id))
			}
			client, err := knowledge.NewClient(c.String("api-url"), token, clientOpts...)
			if err != nil {
				return fmt.Errorf("failed to create knowledge client: %w", err)
			}
			opts = append(opts, pipeline.WithUploader(client))
			if c.String("knowledge-id") != "" {
				opts = append(opts, pipeline.WithRegistrar(client))
			} else {
				slog.Info("no knowledge collection configured, skipping registration")
			}
		}
	}

	service, err := pipeline.NewService(finder, converter, embedder, c.String("output-dir"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer service.Release()

	inputDir := c.String("input-dir")
	fmt.Fprintf(os.Stderr, "Processing documents in %q\n", inputDir)
	fmt.Fprintf(os.Stderr, "Saving markdown output to %q\n\n", c.String("output-dir"))

	report, err := service.Run(c.Context, inputDir)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	printReport(service, report)
	return nil
}

// printReport writes the human-readable run summary. Per-file failures are
// listed here rather than surfaced as a process failure.
func printReport(service *pipeline.Service, report *core.Report) {
	if report.TotalProcessed == 0 && len(report.NewlyProcessed) == 0 {
		fmt.Println("No documents found to process.")
		return
	}

	fmt.Printf("\nProcessed %d new documents out of %d total:\n",
		len(report.NewlyProcessed), report.TotalProcessed)

	newFiles := append([]string(nil), report.NewlyProcessed...)
	sort.Strings(newFiles)
	for _, source := range newFiles {
		status := "Success"
		if _, failed := report.Errors[source]; failed {
			status = "Error"
		}
		fmt.Printf("- %s (%s)\n", source, status)
	}

	if len(report.Errors) > 0 {
		fmt.Println("\nErrors encountered:")
		sources := make([]string, 0, len(report.Errors))
		for source := range report.Errors {
			sources = append(sources, source)
		}
		sort.Strings(sources)
		for _, source := range sources {
			fmt.Printf("- %s: %s\n", source, report.Errors[source])
		}
	}

	if len(report.Uploads) > 0 {
		fmt.Printf("\nUploaded %d files:\n", len(report.Uploads))
		artifacts := make([]string, 0, len(report.Uploads))
		for artifact := range report.Uploads {
			artifacts = append(artifacts, artifact)
		}
		sort.Strings(artifacts)
		for _, artifact := range artifacts {
			outcome := report.Uploads[artifact]
			status := "Success"
			if !outcome.Ok() {
				status = "Error: " + outcome.Error
			}
			fmt.Printf("- %s: %s\n", artifact, status)
		}
		fmt.Printf("Upload results saved to: %s\n", service.LedgerFile())
	}

	if len(report.RegistrationFailures) > 0 {
		fmt.Printf("\n%d files failed knowledge registration; rerun to retry.\n",
			len(report.RegistrationFailures))
	}

	fmt.Printf("\nProgress file saved to: %s\n", service.ProgressFile())
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	if path := c.String("log-file"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level: level,
		})
		slog.SetDefault(slog.New(slogmulti.Fanout(stderrHandler, fileHandler)))
		return nil
	}

	slog.SetDefault(slog.New(stderrHandler))
	return nil
}
