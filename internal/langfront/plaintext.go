// SPDX-License-Identifier: Apache-2.0

package langfront

// PlainText is the fallback Analyzer for files with no dedicated language
// analyzer: it extracts no modules or functions, so the file gets no graph
// node (and so nothing in the lexical index), but ingest still tracks the
// file's content hash.
type PlainText struct{}

func (PlainText) Extensions() []string { return nil }
func (PlainText) Language() string     { return "plaintext" }

func (PlainText) Analyze(path string, content []byte) (*AnalyzeResult, error) {
	return &AnalyzeResult{Path: path, Language: "plaintext"}, nil
}
