package execution

import "github.com/tuannm99/novacore/internal/types"

// Result is an operator's output gathered into rows.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Collect opens op, reads it to the end and closes it. INT cells are int32,
// STRING cells are string.
func Collect(op OpIterator) (*Result, error) {
	if err := op.Open(); err != nil {
		return nil, err
	}
	tuples, err := Drain(op)
	if cerr := op.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: op.TupleDesc().Names()}
	for _, t := range tuples {
		row := make([]any, 0, len(res.Columns))
		for _, f := range t.Fields() {
			row = append(row, cellValue(f))
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func cellValue(f types.Field) any {
	switch v := f.(type) {
	case types.IntField:
		return v.Value
	case types.StringField:
		return v.Value
	case nil:
		return nil
	default:
		return v.String()
	}
}
