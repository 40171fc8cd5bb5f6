package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
)

func NewCmdIDF(opts *CorpusOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "idf [term]",
		Short: "Print the inverse document frequency of a term.",
		Long: heredoc.Doc(`
			idf prints ln(N/df) for the normalized term, where N is the number of
			documents and df the number containing the term. Terms found in no
			document have an idf of 0.

			Examples:
			  tfidf idf dogs
			  tfidf idf "Dogs!" --dir doggos
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := loadCorpus(cmd.Context(), opts)
			if err != nil {
				return err
			}
			term := tokenizer.Normalize(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "idf(%s) = %.6f (df %d of %d documents)\n",
				term, corpus.IDF(term), corpus.DocFreq(term), corpus.DocCount())
			return nil
		},
	}
}
