package repository

import (
	"fmt"
	"strings"
)

// whereClause accumulates AND-ed conditions with numbered placeholders.
// Formats receive the placeholder index as their only operand, so a
// condition may reuse it with %[1]d.
type whereClause struct {
	conditions []string
	args       []interface{}
}

func newWhere() *whereClause {
	return &whereClause{conditions: []string{"1=1"}}
}

func (w *whereClause) add(format string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conditions = append(w.conditions, fmt.Sprintf(format, len(w.args)))
}

func (w *whereClause) String() string {
	return strings.Join(w.conditions, " AND ")
}

// page appends LIMIT/OFFSET placeholders and their args.
func (w *whereClause) page(limit, offset int) (string, []interface{}) {
	n := len(w.args)
	args := append(append([]interface{}{}, w.args...), limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", n+1, n+2), args
}

// orderClause maps a user supplied sort key onto a whitelisted column.
// Unknown keys fall back to fallback. tiebreak keeps paging stable.
func orderClause(columns map[string]string, orderBy, fallback, tiebreak string, descending bool) string {
	col, ok := columns[orderBy]
	if !ok {
		col = columns[fallback]
	}
	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, %s", col, dir, tiebreak)
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
