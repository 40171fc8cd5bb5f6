package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewCmdVocab(opts *CorpusOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vocab",
		Short: "List every indexed term with its document frequency and idf.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := loadCorpus(cmd.Context(), opts)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TERM\tDF\tIDF")
			for _, entry := range corpus.Snapshot() {
				fmt.Fprintf(tw, "%s\t%d\t%.6f\n", entry.Term, entry.DocFreq, entry.IDF)
			}
			return tw.Flush()
		},
	}
}
