// Package discover implements functional-dependency candidate detection over
// an in-memory dataset.
//
// The detector is responsible for:
//   - Enumerating candidate determinants up to a configurable arity
//   - Measuring per-candidate confidence from distinct-group statistics
//   - Classifying candidates (auto_confirmed / needs_review / discarded)
//   - Flagging unique columns as key candidates instead of FD forests
//   - Optional deterministic row sampling with full-data re-validation
//
// Design constraints:
//   - Detection is best-effort and never fails; it always returns a report.
//   - Output order is deterministic regardless of worker count: candidates
//     are sorted by determinant, then dependent, before classification.
//   - Null cells never support or refute a dependency; rows with a null in
//     the determinant or the dependent are excluded from grouping.
package discover

import (
	"math/rand"
	"sort"
	"strings"
	"sync"

	"normalizer/internal/relation"
)

// Hard classification cutoffs. Anything below reviewThreshold is discarded
// outright to bound output size on noisy data.
const (
	reviewThreshold = 0.95

	// sampleSeed makes sampled detection reproducible across runs.
	sampleSeed = 42
)

// Options control candidate enumeration and resource limits.
type Options struct {
	// MaxArity bounds determinant size. Zero means the default of 2.
	MaxArity int

	// SampleThreshold is the row count above which detection runs on a
	// deterministic random sample first. Zero means the default of 50000;
	// negative disables sampling entirely.
	SampleThreshold int

	// SampleSize is the number of sampled rows. Zero means SampleThreshold.
	SampleSize int

	// Workers parallelizes the determinant scan. Zero or one means serial.
	// The scan is embarrassingly parallel; results are merged and sorted so
	// worker count never changes the output.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.MaxArity <= 0 {
		o.MaxArity = 2
	}
	if o.SampleThreshold == 0 {
		o.SampleThreshold = 50000
	}
	if o.SampleSize <= 0 {
		o.SampleSize = o.SampleThreshold
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// Result is the full detection report.
type Result struct {
	// Candidates are the surviving dependencies in canonical order. Status
	// is only ever auto_confirmed or needs_review here; confirmation is an
	// explicit caller transition.
	Candidates []relation.FD

	// KeyColumns are columns whose distinct non-null count equals the row
	// count. Such a column trivially determines everything, so it is
	// reported once as a key candidate rather than as one FD per column.
	KeyColumns []string

	// Suggestions carry atomicity warnings and semantic dependency
	// questions for the caller to put in front of a user.
	Suggestions []Suggestion

	// Sampled reports whether the scan ran on a sample before full-data
	// re-validation.
	Sampled bool
}

// Detect scans ds for candidate functional dependencies.
//
// For each candidate determinant X and dependent column y, confidence is
// 1 - (groups with more than one distinct y) / (distinct X groups), with
// null-bearing rows excluded. A candidate reaches the report only at
// confidence >= 0.95; perfect candidates are auto_confirmed, the rest
// needs_review with the literal violation count attached.
//
// When the dataset exceeds the sampling threshold, the scan runs on a
// reproducible sample and every surviving candidate is re-measured against
// the full dataset before classification, so sampling can never inflate or
// silently lower a reported confidence.
func Detect(ds *relation.Dataset, opt Options) Result {
	opt = opt.withDefaults()

	res := Result{}
	if ds == nil || len(ds.Columns) < 2 || ds.NumRows() == 0 {
		return res
	}

	sc := newScan(ds)
	res.KeyColumns = sc.uniqueColumns()

	rows := sc.allRows()
	scanRows := rows
	if opt.SampleThreshold > 0 && len(rows) > opt.SampleThreshold {
		scanRows = sampleRows(len(rows), opt.SampleSize)
		res.Sampled = true
	}

	dets := sc.determinants(opt.MaxArity, res.KeyColumns)
	cands := evaluateAll(sc, dets, scanRows, opt.Workers)

	if res.Sampled {
		// Re-measure every survivor on the full dataset. The sample only
		// prunes the search space; reported numbers are full-data truth.
		revalidated := make([]candidate, 0, len(cands))
		for _, c := range cands {
			conf, viol, groups := sc.measure(c.det, c.dep, rows)
			if groups == 0 || conf < reviewThreshold {
				continue
			}
			c.confidence, c.violations = conf, viol
			revalidated = append(revalidated, c)
		}
		cands = revalidated
	}

	res.Candidates = classify(sc, cands)
	res.Suggestions = FilterSuggestedFDs(suggest(ds, res.KeyColumns), res.Candidates)
	return res
}

type candidate struct {
	det        []int
	dep        int
	confidence float64
	violations int
}

// classify drops multi-attribute determinants subsumed by a perfect
// single-column dependency, assigns statuses, and fixes the canonical order.
func classify(sc *scan, cands []candidate) []relation.FD {
	perfect := make(map[int]map[int]bool) // single det col -> dep col -> exact
	for _, c := range cands {
		if len(c.det) == 1 && c.violations == 0 && c.confidence == 1 {
			m := perfect[c.det[0]]
			if m == nil {
				m = make(map[int]bool)
				perfect[c.det[0]] = m
			}
			m[c.dep] = true
		}
	}

	out := make([]relation.FD, 0, len(cands))
	for _, c := range cands {
		if len(c.det) > 1 {
			subsumed := false
			for _, d := range c.det {
				if perfect[d][c.dep] {
					subsumed = true
					break
				}
			}
			if subsumed {
				continue
			}
		}

		status := relation.StatusNeedsReview
		if c.confidence == 1 && c.violations == 0 {
			status = relation.StatusAutoConfirmed
		}
		out = append(out, relation.FD{
			Determinant: relation.NewAttrSet(sc.names(c.det)...),
			Dependent:   relation.NewAttrSet(sc.name(c.dep)),
			Confidence:  c.confidence,
			Violations:  c.violations,
			Status:      status,
		})
	}
	relation.SortFDs(out)
	return out
}

// evaluateAll measures every (determinant, dependent) pair, optionally
// across a worker pool. Each determinant is an independent unit of work.
func evaluateAll(sc *scan, dets [][]int, rows []int, workers int) []candidate {
	if workers <= 1 || len(dets) < 2 {
		var out []candidate
		for _, det := range dets {
			out = append(out, evaluateDeterminant(sc, det, rows)...)
		}
		return out
	}

	detCh := make(chan []int)
	results := make([][]candidate, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for det := range detCh {
				results[id] = append(results[id], evaluateDeterminant(sc, det, rows)...)
			}
		}(w)
	}
	for _, det := range dets {
		detCh <- det
	}
	close(detCh)
	wg.Wait()

	var out []candidate
	for _, part := range results {
		out = append(out, part...)
	}
	// Merge order depends on scheduling; restore determinism before use.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for k := 0; k < len(a.det) && k < len(b.det); k++ {
			if a.det[k] != b.det[k] {
				return a.det[k] < b.det[k]
			}
		}
		if len(a.det) != len(b.det) {
			return len(a.det) < len(b.det)
		}
		return a.dep < b.dep
	})
	return out
}

func evaluateDeterminant(sc *scan, det []int, rows []int) []candidate {
	var out []candidate
	for dep := 0; dep < sc.numCols(); dep++ {
		if containsInt(det, dep) {
			continue
		}
		conf, viol, groups := sc.measure(det, dep, rows)
		if groups == 0 || conf < reviewThreshold {
			continue
		}
		out = append(out, candidate{det: det, dep: dep, confidence: conf, violations: viol})
	}
	return out
}

// sampleRows returns size sorted row indices chosen by a fixed-seed shuffle.
func sampleRows(n, size int) []int {
	if size >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	rng := rand.New(rand.NewSource(sampleSeed))
	idx := rng.Perm(n)[:size]
	sort.Ints(idx)
	return idx
}

// ---- per-dataset scan state ----

// scan holds the normalized cell matrix the measurements run on. Cells are
// stringified once up front; the empty string after normalization marks a
// null (empty and null cells are equivalent for grouping purposes).
type scan struct {
	ds    *relation.Dataset
	cells [][]string // [row][col], "" = null
}

func newScan(ds *relation.Dataset) *scan {
	cells := make([][]string, len(ds.Rows))
	for r, row := range ds.Rows {
		line := make([]string, len(ds.Columns))
		for c := range ds.Columns {
			if c < len(row) {
				line[c] = relation.FormatValue(row[c])
			}
		}
		cells[r] = line
	}
	return &scan{ds: ds, cells: cells}
}

func (s *scan) numCols() int      { return len(s.ds.Columns) }
func (s *scan) name(i int) string { return s.ds.Columns[i].Name }

func (s *scan) names(ix []int) []string {
	out := make([]string, len(ix))
	for i, c := range ix {
		out[i] = s.name(c)
	}
	return out
}

func (s *scan) allRows() []int {
	out := make([]int, len(s.cells))
	for i := range out {
		out[i] = i
	}
	return out
}

// distinctStats returns (distinct non-null values, non-null count) per column.
func (s *scan) distinctStats() ([]int, []int) {
	distinct := make([]int, s.numCols())
	nonNull := make([]int, s.numCols())
	for c := 0; c < s.numCols(); c++ {
		seen := make(map[string]struct{})
		for r := range s.cells {
			v := s.cells[r][c]
			if v == "" {
				continue
			}
			nonNull[c]++
			seen[v] = struct{}{}
		}
		distinct[c] = len(seen)
	}
	return distinct, nonNull
}

// uniqueColumns returns columns whose non-null distinct count equals the
// total row count: trivial determinants of everything, reported as key
// candidates instead of an FD forest.
func (s *scan) uniqueColumns() []string {
	distinct, nonNull := s.distinctStats()
	var out []string
	for c := range distinct {
		if nonNull[c] == len(s.cells) && distinct[c] == len(s.cells) {
			out = append(out, s.name(c))
		}
	}
	sort.Strings(out)
	return out
}

// determinants enumerates candidate determinant column index sets up to
// maxArity. Unique columns are excluded (they are key candidates).
// Multi-column determinants are restricted to high-cardinality members,
// which keeps the combinatorics bounded on wide datasets.
func (s *scan) determinants(maxArity int, uniqueCols []string) [][]int {
	uniq := make(map[string]struct{}, len(uniqueCols))
	for _, c := range uniqueCols {
		uniq[c] = struct{}{}
	}

	var single []int
	for c := 0; c < s.numCols(); c++ {
		if _, ok := uniq[s.name(c)]; ok {
			continue
		}
		single = append(single, c)
	}

	var out [][]int
	for _, c := range single {
		out = append(out, []int{c})
	}

	if maxArity < 2 {
		return out
	}

	distinct, nonNull := s.distinctStats()
	var highCard []int
	for _, c := range single {
		if nonNull[c] > 0 && float64(distinct[c])/float64(nonNull[c]) > 0.5 {
			highCard = append(highCard, c)
		}
	}

	combos := [][]int{}
	for _, c := range highCard {
		combos = append(combos, []int{c})
	}
	for arity := 2; arity <= maxArity; arity++ {
		var next [][]int
		for _, base := range combos {
			if len(base) != arity-1 {
				continue
			}
			last := base[len(base)-1]
			for _, c := range highCard {
				if c <= last {
					continue
				}
				combo := append(append([]int(nil), base...), c)
				next = append(next, combo)
				out = append(out, combo)
			}
		}
		combos = append(combos, next...)
	}
	return out
}

// measure computes (confidence, violating groups, total groups) for det->dep
// over the given row subset. Rows with a null in det or dep are excluded.
func (s *scan) measure(det []int, dep int, rows []int) (float64, int, int) {
	firstSeen := make(map[string]string)
	violated := make(map[string]struct{})

	var sb strings.Builder
rowLoop:
	for _, r := range rows {
		line := s.cells[r]
		if line[dep] == "" {
			continue
		}
		sb.Reset()
		for i, c := range det {
			if line[c] == "" {
				continue rowLoop
			}
			if i > 0 {
				sb.WriteByte(0x1f)
			}
			sb.WriteString(line[c])
		}
		key := sb.String()

		prev, ok := firstSeen[key]
		if !ok {
			firstSeen[key] = line[dep]
			continue
		}
		if prev != line[dep] {
			violated[key] = struct{}{}
		}
	}

	groups := len(firstSeen)
	if groups == 0 {
		return 0, 0, 0
	}
	viol := len(violated)
	return 1 - float64(viol)/float64(groups), viol, groups
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
