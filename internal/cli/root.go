// Package cli implements the tfidf command: one-shot searches and corpus
// inspection over a directory of text files, plus operator helpers for a
// running search service.
package cli

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
)

// CorpusOptions are the flags shared by every command that reads a local
// directory.
type CorpusOptions struct {
	Dir         string
	Extension   string
	Concurrency int
	MaxDocBytes int
	LogLevel    string
}

func NewCmdRoot() *cobra.Command {
	opts := &CorpusOptions{}
	cmd := &cobra.Command{
		Use:   "tfidf",
		Short: "Rank text files against free-text queries with tf-idf.",
		Long: heredoc.Doc(`
			tfidf indexes every file with the given extension in a directory and
			ranks them against a query by the sum of tf-idf weights of its terms.

			Examples:
			  tfidf demo
			  tfidf search love dogs --dir doggos
			  tfidf idf dogs --dir doggos
			  tfidf vocab --dir doggos
		`),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupWriter(cmd.ErrOrStderr(), opts.LogLevel, "text")
		},
	}

	defaults := config.Default().Indexer
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", defaults.DataDir, "directory of documents to index")
	cmd.PersistentFlags().StringVar(&opts.Extension, "ext", defaults.Extension, "file extension to index")
	cmd.PersistentFlags().IntVar(&opts.Concurrency, "concurrency", defaults.LoadConcurrency, "files read in parallel")
	cmd.PersistentFlags().IntVar(&opts.MaxDocBytes, "max-doc-bytes", defaults.MaxDocumentBytes, "skip files larger than this many bytes (0 keeps all)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(NewCmdSearch(opts))
	cmd.AddCommand(NewCmdIDF(opts))
	cmd.AddCommand(NewCmdVocab(opts))
	cmd.AddCommand(NewCmdDemo(opts))
	cmd.AddCommand(NewCmdReload())
	cmd.AddCommand(NewCmdLoadTest())
	return cmd
}

// loadCorpus builds a corpus from opts.Dir through the same Engine the
// search service uses, so validation rules match.
func loadCorpus(ctx context.Context, opts *CorpusOptions) (*index.Corpus, error) {
	cfg := config.Default().Indexer
	cfg.DataDir = opts.Dir
	cfg.Extension = opts.Extension
	cfg.LoadConcurrency = opts.Concurrency
	cfg.MaxDocumentBytes = opts.MaxDocBytes
	cfg.LoadAttempts = 1

	src := loader.NewDirSource(cfg.DataDir, cfg.Extension, cfg.LoadConcurrency)
	engine := indexer.NewEngine(cfg, src, nil)
	if err := engine.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("indexing %s: %w", opts.Dir, err)
	}
	return engine.Corpus(), nil
}
