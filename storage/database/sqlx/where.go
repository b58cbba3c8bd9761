package sqlxrepos

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Hexmon/e-dossier-sub006/core"
)

// columns maps the fields a table can be filtered on to their SQL expressions.
type columns map[core.Field]string

// where renders filter as a " WHERE ..." clause with `?` bind vars; callers Rebind the full query.
func (cols columns) where(filter core.Predicates) (string, []interface{}, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(filter))
	args := make([]interface{}, 0, len(filter))
	for _, p := range filter {
		col, ok := cols[p.Field]
		if !ok {
			return "", nil, errors.Errorf("unsupported filter field %q", p.Field)
		}
		switch p.Op {
		case core.OpEq:
			conds = append(conds, col+" = ?")
			args = append(args, p.Value)
		case core.OpIn:
			values, _ := p.Value.([]interface{})
			if len(values) == 0 {
				conds = append(conds, "1 = 0")
				continue
			}
			conds = append(conds, col+" IN (?"+strings.Repeat(", ?", len(values)-1)+")")
			args = append(args, values...)
		case core.OpIsNull:
			conds = append(conds, col+" IS NULL")
		default:
			return "", nil, errors.Errorf("unsupported filter operator %q", p.Op)
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
