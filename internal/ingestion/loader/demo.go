package loader

import (
	"fmt"
	"os"
	"path/filepath"
)

// DemoDocuments is the sample corpus written by Demo, keyed by file name.
var DemoDocuments = []struct {
	Name    string
	Content string
}{
	{Name: "doc1.txt", Content: "dogs are the greatest pets"},
	{Name: "doc2.txt", Content: "cats seem pretty okay"},
	{Name: "doc3.txt", Content: "i love dogs"},
}

// Demo creates dir with the sample documents unless it already exists. It
// reports whether anything was written; an existing directory is left
// untouched.
func Demo(dir string) (bool, error) {
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking demo directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating demo directory: %w", err)
	}
	for _, doc := range DemoDocuments {
		path := filepath.Join(dir, doc.Name)
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return false, fmt.Errorf("writing demo document %s: %w", doc.Name, err)
		}
	}
	return true, nil
}
