package index

// Entry is one input document: a caller-chosen identifier and its decoded
// text content.
type Entry struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// TermEntry summarises one inverted-index term.
type TermEntry struct {
	Term      string   `json:"term"`
	DocFreq   int      `json:"doc_freq"`
	IDF       float64  `json:"idf"`
	Documents []string `json:"documents"`
}

// DocStats describes one indexed document.
type DocStats struct {
	DocID      string `json:"doc_id"`
	TokenCount int    `json:"token_count"`
	Terms      int    `json:"terms"`
}
