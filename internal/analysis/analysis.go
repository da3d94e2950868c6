// Package analysis ties the pipeline stages together: dependency detection,
// candidate key inference, and normal-form assessment over one dataset. It
// also owns the explicit confirm/reject transitions that gate which
// dependencies may feed decomposition. The CLI and the HTTP API both drive
// this package rather than the stage packages directly.
package analysis

import (
	"fmt"
	"sort"
	"time"

	"normalizer/internal/discover"
	"normalizer/internal/metrics"
	"normalizer/internal/normalize"
	"normalizer/internal/relation"
)

// Question is an open item the analysis cannot settle from data alone: a
// near-perfect dependency awaiting review, a semantic-pattern suggestion,
// or a column that looks non-atomic.
type Question struct {
	Type     string       `json:"type"`
	Column   string       `json:"column,omitempty"`
	FD       *relation.FD `json:"fd,omitempty"`
	Question string       `json:"question"`
}

// Question types. Suggestion kinds from the detector pass through as-is.
const QuestionFDConfirmation = "fd_confirmation"

// Result is one full analysis of a dataset.
type Result struct {
	Rows          int                `json:"rows"`
	Columns       []relation.Column  `json:"columns"`
	Dependencies  []relation.FD      `json:"functional_dependencies"`
	KeyColumns    []string           `json:"key_columns,omitempty"`
	CandidateKeys []relation.AttrSet `json:"candidate_keys"`
	NormalForm    string             `json:"current_normal_form"`
	Report        normalize.Report   `json:"assessment"`
	Questions     []Question         `json:"questions,omitempty"`
	Sampled       bool               `json:"sampled,omitempty"`
}

// Analyze runs detection, key inference, and assessment over a dataset.
func Analyze(ds *relation.Dataset, opt discover.Options) (*Result, error) {
	start := time.Now()

	det := discover.Detect(ds, opt)

	keys, err := candidateKeys(ds, det)
	if err != nil {
		metrics.RecordStage("analyze", err, time.Since(start))
		return nil, err
	}

	report := normalize.Assess(ds.AttrSet(), det.Candidates, keys)

	res := &Result{
		Rows:          ds.NumRows(),
		Columns:       ds.Columns,
		Dependencies:  det.Candidates,
		KeyColumns:    det.KeyColumns,
		CandidateKeys: keys,
		NormalForm:    report.Classification,
		Report:        report,
		Questions:     buildQuestions(det),
		Sampled:       det.Sampled,
	}

	metrics.RecordStage("analyze", nil, time.Since(start))
	metrics.RecordRows("analyzed", ds.NumRows())
	return res, nil
}

// candidateKeys merges the two sources of key evidence: unique columns seen
// in the data and keys inferable from the accepted dependencies. Supersets
// of another key are pruned.
func candidateKeys(ds *relation.Dataset, det discover.Result) ([]relation.AttrSet, error) {
	keys, err := normalize.InferKeys(ds.AttrSet(), det.Candidates)
	if err != nil {
		return nil, err
	}

	for _, col := range det.KeyColumns {
		single := relation.NewAttrSet(col)
		dup := false
		for _, k := range keys {
			if k.Equal(single) {
				dup = true
				break
			}
		}
		if !dup {
			keys = append(keys, single)
		}
	}

	keys = pruneSupersets(keys)
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i].Key() < keys[j].Key()
	})
	return keys, nil
}

func pruneSupersets(keys []relation.AttrSet) []relation.AttrSet {
	out := keys[:0]
	for i, k := range keys {
		proper := false
		for j, other := range keys {
			if i != j && other.ProperSubsetOf(k) {
				proper = true
				break
			}
		}
		if !proper {
			out = append(out, k)
		}
	}
	return out
}

// buildQuestions renders every near-perfect dependency as a confirmation
// question and passes the detector's suggestions through.
func buildQuestions(det discover.Result) []Question {
	var out []Question
	for i := range det.Candidates {
		fd := det.Candidates[i]
		if fd.Status != relation.StatusNeedsReview {
			continue
		}
		out = append(out, Question{
			Type: QuestionFDConfirmation,
			FD:   &det.Candidates[i],
			Question: fmt.Sprintf("Does %s hold? (%d violations found, %.1f%% confidence)",
				fd, fd.Violations, fd.Confidence*100),
		})
	}
	for i := range det.Suggestions {
		s := det.Suggestions[i]
		out = append(out, Question{
			Type:     s.Kind,
			Column:   s.Column,
			FD:       s.FD,
			Question: s.Question,
		})
	}
	return out
}
