// Package sink writes extracted problems to the on-disk layout:
//
//	<root>/<category>/<NN>-<Title-With-Dashes>/README.md
//	<root>/<category>/<NN>-<Title-With-Dashes>/testcases.json
//	<root>/<category>/<NN>-<Title-With-Dashes>/<language>/   (one per language)
package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/model"
)

const readmeTemplate = "## {{.Title}}\n\n{{.Description}}\n\n### Sample Input\n```\n{{.SampleInput}}\n```\n\n### Sample Output\n```\n{{.SampleOutput}}\n```\n"

var readmeTmpl = template.Must(template.New("readme").Parse(readmeTemplate))

// Sink writes problem records and their test cases under root.
type Sink struct {
	root      string
	languages []string
}

// New creates a Sink writing under root with one subdirectory per
// language inside each item directory.
func New(root string, languages []string) *Sink {
	return &Sink{root: root, languages: languages}
}

// DirName builds the item directory name from its 1-based category
// position and title. Positions 1-9 are zero-padded to two digits;
// larger positions keep their natural width.
func DirName(position int, title string) string {
	return fmt.Sprintf("%02d-%s", position, strings.ReplaceAll(title, " ", "-"))
}

// Write persists the problem and its test cases, returning the item
// directory. Both files must be written before the caller may mark the
// item complete; any error propagates. Re-writing an existing directory
// is an idempotent overwrite, which is how interrupted runs heal.
func (s *Sink) Write(p model.Problem, position int, cases []model.TestCase) (string, error) {
	if !p.Valid() {
		return "", eris.Errorf("sink: refusing to write invalid record %s", p.URL)
	}

	dir := filepath.Join(s.root, p.Category, DirName(position, p.Title))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "sink: create %s", dir)
	}
	for _, lang := range s.languages {
		if err := os.MkdirAll(filepath.Join(dir, lang), 0o755); err != nil {
			return "", eris.Wrapf(err, "sink: create language dir %s", lang)
		}
	}

	readme, err := renderReadme(p)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), readme, 0o644); err != nil {
		return "", eris.Wrap(err, "sink: write README.md")
	}

	tcJSON, err := MarshalTestCases(cases)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "testcases.json"), tcJSON, 0o644); err != nil {
		return "", eris.Wrap(err, "sink: write testcases.json")
	}

	zap.L().Debug("sink: wrote item",
		zap.String("dir", dir),
		zap.Int("testcases", len(cases)),
	)
	return dir, nil
}

func renderReadme(p model.Problem) ([]byte, error) {
	var buf bytes.Buffer
	if err := readmeTmpl.Execute(&buf, p); err != nil {
		return nil, eris.Wrap(err, "sink: render README")
	}
	return buf.Bytes(), nil
}

// MarshalTestCases serializes cases as a pretty-printed JSON array with
// two-space indentation, in extraction order. A nil slice still encodes
// as an empty array.
func MarshalTestCases(cases []model.TestCase) ([]byte, error) {
	if cases == nil {
		cases = []model.TestCase{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cases); err != nil {
		return nil, eris.Wrap(err, "sink: encode testcases")
	}
	return buf.Bytes(), nil
}
