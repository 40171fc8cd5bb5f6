package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/loader"
)

const demoQuery = "love dogs"

func NewCmdDemo(opts *CorpusOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Create the sample corpus and search it for 'love dogs'.",
		Long: heredoc.Doc(`
			demo writes three small documents about dogs and cats to --dir unless
			the directory already exists, then searches them for 'love dogs'.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			created, err := loader.Demo(opts.Dir)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(out, "Created demo folder '%s' with example files.\n", opts.Dir)
			} else {
				fmt.Fprintf(out, "Folder '%s' already exists, skipping creation.\n", opts.Dir)
			}
			corpus, err := loadCorpus(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			return runSearch(out, corpus, demoQuery, opts.Extension, 0, false)
		},
	}
}
