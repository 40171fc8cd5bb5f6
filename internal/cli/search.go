package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
)

func NewCmdSearch(opts *CorpusOptions) *cobra.Command {
	var (
		limit      int
		showScores bool
	)
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Rank the documents in a directory against a query.",
		Long: heredoc.Doc(`
			Search prints every document containing at least one query term,
			best match first. Documents with equal scores keep file-name order.

			Examples:
			  tfidf search love dogs
			  tfidf search "greatest pets" --dir doggos --limit 1 --scores
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := loadCorpus(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return runSearch(cmd.OutOrStdout(), corpus, strings.Join(args, " "), opts.Extension, limit, showScores)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results to print (0 prints all)")
	cmd.Flags().BoolVar(&showScores, "scores", false, "print each document's tf-idf score")
	return cmd
}

func runSearch(w io.Writer, corpus *index.Corpus, query, ext string, limit int, showScores bool) error {
	results := corpus.Score(query, limit)
	fmt.Fprintf(w, "Search results for '%s':\n", query)
	if len(results) == 0 {
		fmt.Fprintln(w, "No documents matched.")
		return nil
	}
	for i, r := range results {
		name := docName(r.DocID, ext)
		if showScores {
			fmt.Fprintf(w, "%d. %s (%.6f)\n", i+1, name, r.Score)
			continue
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, name)
	}
	return nil
}

// docName prints a directory document by its file name without extension.
func docName(id, ext string) string {
	return strings.TrimSuffix(filepath.Base(id), ext)
}
