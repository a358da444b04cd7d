package postgres

import (
	"fmt"
	"strings"
)

// Where accumulates AND-ed predicates and numbers their placeholders.
// Conditions use "?" for each argument.
type Where struct {
	conds []string
	args  []any
}

func (w *Where) Add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

// AddIf adds cond only when ok.
func (w *Where) AddIf(ok bool, cond string, args ...any) {
	if ok {
		w.Add(cond, args...)
	}
}

// SQL renders " WHERE ..." or an empty string.
func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *Where) Args() []any { return w.args }

// Next returns the placeholder the next appended argument will take, and
// appends it. Used for LIMIT/OFFSET after the predicates.
func (w *Where) Next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

// Like escapes s for use inside an ILIKE pattern and wraps it in %.
func Like(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
