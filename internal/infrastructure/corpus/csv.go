// Package corpus reads the CSV training corpus and article corpus from disk
// and serves the article corpus from memory.
package corpus

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// Column names.
const (
	ColText       = "text"
	ColLabel      = "label"
	ColEntityName = "entity_name"
	ColHeadline   = "headline"
	ColSnippet    = "snippet"
	ColSource     = "source"
	ColDate       = "date"
	ColURL        = "url"
	ColTypologyGT = "typology_gt"
)

type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	row, err := r.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.ErrCodeCorpusInvalid, "csv is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusInvalid, "read csv header")
	}
	h := header{}
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		h[strings.ToLower(name)] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, errors.Newf(errors.ErrCodeCorpusInvalid, "csv header lacks column %q", col)
		}
	}
	return h, nil
}

func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// ReadTrainingExamples parses "text,label" rows. Rows with an empty text are
// skipped; an unknown label fails with ErrCodeInvalidTrainingData.
func ReadTrainingExamples(r io.Reader) ([]risk.TrainingExample, error) {
	cr := newReader(r)
	h, err := readHeader(cr, ColText, ColLabel)
	if err != nil {
		return nil, err
	}

	var out []risk.TrainingExample
	for line := 2; ; line++ {
		row, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCorpusInvalid, "read training csv")
		}
		text := h.get(row, ColText)
		if text == "" {
			continue
		}
		label, err := risk.ParseTypology(h.get(row, ColLabel))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidTrainingData, "training csv").
				WithDetail(fmt.Sprintf("line %d", line))
		}
		out = append(out, risk.TrainingExample{Text: text, Label: label})
	}
	return out, nil
}

// ReadArticles parses article rows. url and typology_gt are optional; an
// unparseable ground truth is left empty.
func ReadArticles(r io.Reader) ([]risk.Article, error) {
	cr := newReader(r)
	h, err := readHeader(cr, ColEntityName, ColHeadline, ColSnippet)
	if err != nil {
		return nil, err
	}

	var out []risk.Article
	for {
		row, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCorpusInvalid, "read article csv")
		}
		a := risk.Article{
			EntityName: h.get(row, ColEntityName),
			Headline:   h.get(row, ColHeadline),
			Snippet:    h.get(row, ColSnippet),
			Source:     h.get(row, ColSource),
			Date:       h.get(row, ColDate),
			URL:        h.get(row, ColURL),
		}
		if a.EntityName == "" {
			continue
		}
		if gt, err := risk.ParseTypology(h.get(row, ColTypologyGT)); err == nil {
			a.GroundTruth = gt
		}
		out = append(out, a)
	}
	return out, nil
}

// WriteTrainingExamples writes the text,label corpus.
func WriteTrainingExamples(w io.Writer, examples []risk.TrainingExample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColText, ColLabel}); err != nil {
		return err
	}
	for _, ex := range examples {
		if err := cw.Write([]string{ex.Text, string(ex.Label)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteArticles writes articles with the full header.
func WriteArticles(w io.Writer, articles []risk.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColEntityName, ColHeadline, ColSnippet, ColSource, ColDate, ColURL, ColTypologyGT}); err != nil {
		return err
	}
	for _, a := range articles {
		if err := cw.Write([]string{a.EntityName, a.Headline, a.Snippet, a.Source, a.Date, a.URL, string(a.GroundTruth)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

//Personal.AI order the ending
