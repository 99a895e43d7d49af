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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/poiesic/jawab"
	"github.com/poiesic/jawab/ai"
	"github.com/poiesic/jawab/engine"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "jawab",
		Usage: "FAQ knowledge engine for English, Hindi, and Hinglish queries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "teach",
				Usage:  "Store a question/answer pair",
				Action: teachCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "question",
						Aliases:  []string{"q"},
						Usage:    "Question text (Devanagari, Latin, or mixed)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "answer",
						Aliases:  []string{"a"},
						Usage:    "Answer text, returned verbatim on match",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Knowledge domain namespace",
						Value: "general",
					},
					&cli.Float64Flag{
						Name:  "confidence",
						Usage: "Author-assigned confidence weight in [0,1]",
						Value: 1.0,
					},
				},
			},
			{
				Name:   "ask",
				Usage:  "Answer a query from the knowledge store",
				Action: askCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Knowledge domain namespace",
						Value: "general",
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
				},
			},
			{
				Name:   "index",
				Usage:  "Build and persist the vector index for a domain",
				Action: indexCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Knowledge domain namespace",
						Value: "general",
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
				},
			},
			{
				Name:   "stats",
				Usage:  "Summarize the knowledge store",
				Action: statsCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of most-used entries to show",
						Value: 5,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func embeddingHostFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "embedding-host",
		Usage: "Embedding service host URL (enables semantic search)",
	}
}

func embeddingModelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "embedding-model",
		Usage: "Embedding model name",
		Value: "embeddinggemma",
	}
}

// openDatabase wires the database, enabling semantic search only
// when an embedding host was given.
func openDatabase(c *cli.Context) (*jawab.Database, error) {
	var opts []jawab.DatabaseOption
	if host := c.String("embedding-host"); host != "" {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(host),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)
		opts = append(opts, jawab.WithAIConfig(aiConfig))
	}
	return jawab.Open(c.String("db"), opts...)
}

func teachCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := jawab.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.Teach(ctx, c.String("question"), c.String("answer"), c.String("domain"),
		engine.WithConfidence(c.Float64("confidence")))
	if err != nil {
		return fmt.Errorf("failed to teach entry: %w", err)
	}

	fmt.Printf("stored entry %d in domain %q\n", id, c.String("domain"))
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("usage: jawab ask --db PATH <query>")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	answers, err := db.Ask(ctx, query, c.String("domain"))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(answers) == 0 {
		fmt.Println("no answer found")
		return nil
	}

	for i, answer := range answers {
		fmt.Printf("%d. [%s %.2f] %s\n   %s\n", i+1, answer.Source, answer.Score, answer.Question, answer.Answer)
	}
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.String("embedding-host") == "" {
		return fmt.Errorf("embedding-host is required to build a vector index")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	domain := c.String("domain")
	if err := db.BuildVectorIndex(ctx, domain); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	fmt.Printf("vector index built for domain %q\n", domain)
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := jawab.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	stats, err := db.Stats(ctx, c.Int("top"))
	if err != nil {
		return fmt.Errorf("failed to gather stats: %w", err)
	}

	fmt.Printf("total entries: %d\n", stats.TotalEntries)

	domains := make([]string, 0, len(stats.DomainCounts))
	for domain := range stats.DomainCounts {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	for _, domain := range domains {
		fmt.Printf("  %s: %d\n", domain, stats.DomainCounts[domain])
	}

	if len(stats.MostUsed) > 0 {
		fmt.Println("most used:")
		for _, entry := range stats.MostUsed {
			fmt.Printf("  %6d  %s\n", entry.UsageCount, entry.Question)
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
