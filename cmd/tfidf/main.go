package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/cli"
)

func main() {
	if err := cli.NewCmdRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
