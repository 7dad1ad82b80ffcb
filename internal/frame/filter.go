package frame

// Predicate is a declarative row condition. Predicates name the
// columns they reference so Filter can validate the schema before any
// row is visited. Missing values fail every predicate except
// IsMissing.
type Predicate interface {
	columns() []string
	matches(r Row) bool
}

type eqPred struct {
	col string
	v   Value
}

func (p eqPred) columns() []string { return []string{p.col} }
func (p eqPred) matches(r Row) bool {
	return r.mustValue(p.col).Equal(p.v)
}

// Eq matches rows whose cell equals v. Missing cells never match.
func Eq(col string, v Value) Predicate { return eqPred{col: col, v: v} }

type inPred struct {
	col  string
	vals []Value
}

func (p inPred) columns() []string { return []string{p.col} }
func (p inPred) matches(r Row) bool {
	cell := r.mustValue(p.col)
	for _, v := range p.vals {
		if cell.Equal(v) {
			return true
		}
	}
	return false
}

// In matches rows whose cell equals any of the given values.
func In(col string, vals ...Value) Predicate { return inPred{col: col, vals: vals} }

type cmpPred struct {
	col       string
	threshold float64
	greater   bool
}

func (p cmpPred) columns() []string { return []string{p.col} }
func (p cmpPred) matches(r Row) bool {
	f, ok := r.mustValue(p.col).AsFloat()
	if !ok {
		return false
	}
	if p.greater {
		return f > p.threshold
	}
	return f < p.threshold
}

// Gt matches rows whose numeric cell exceeds the threshold.
func Gt(col string, threshold float64) Predicate {
	return cmpPred{col: col, threshold: threshold, greater: true}
}

// Lt matches rows whose numeric cell is below the threshold.
func Lt(col string, threshold float64) Predicate {
	return cmpPred{col: col, threshold: threshold, greater: false}
}

type missingPred struct {
	col     string
	missing bool
}

func (p missingPred) columns() []string { return []string{p.col} }
func (p missingPred) matches(r Row) bool {
	return r.mustValue(p.col).IsNull() == p.missing
}

// IsMissing matches rows whose cell is missing. This is the only
// predicate a missing cell can satisfy.
func IsMissing(col string) Predicate { return missingPred{col: col, missing: true} }

// NotMissing matches rows whose cell is present.
func NotMissing(col string) Predicate { return missingPred{col: col, missing: false} }

type andPred struct {
	preds []Predicate
}

func (p andPred) columns() []string {
	var cols []string
	for _, sub := range p.preds {
		cols = append(cols, sub.columns()...)
	}
	return cols
}

func (p andPred) matches(r Row) bool {
	for _, sub := range p.preds {
		if !sub.matches(r) {
			return false
		}
	}
	return true
}

// And matches rows satisfying every sub-predicate.
func And(preds ...Predicate) Predicate { return andPred{preds: preds} }

// Filter returns a new Table containing exactly the rows satisfying
// the predicate, with the column set unchanged and row order
// preserved. A predicate referencing an absent column is a schema
// error, reported before any row is processed.
func Filter(t *Table, p Predicate) (*Table, error) {
	if err := t.requireColumns(p.columns()...); err != nil {
		return nil, err
	}

	var keep []int
	for i := 0; i < t.NumRows(); i++ {
		if p.matches(t.Row(i)) {
			keep = append(keep, i)
		}
	}
	return t.take(keep), nil
}
