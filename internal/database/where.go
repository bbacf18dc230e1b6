package database

import "strings"

// whereBuilder accumulates optional predicates and their bind arguments and
// folds them into a single WHERE clause. Predicates are ANDed in the order
// they were added.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// in adds a column IN (...) predicate. Empty value lists add nothing.
func (w *whereBuilder) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := strings.Repeat("?, ", len(values)-1) + "?"
	w.conds = append(w.conds, column+" IN ("+placeholders+")")
	for _, v := range values {
		w.args = append(w.args, v)
	}
}

// clause renders " WHERE ..." or the empty string when no predicate was
// added, so it can be spliced into a query unconditionally.
func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
