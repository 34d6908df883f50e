package types

// Op is a comparison operator between two fields.
type Op uint8

const (
	Equals Op = iota
	NotEquals
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Like
)

func (op Op) String() string {
	switch op {
	case Equals:
		return "="
	case NotEquals:
		return "<>"
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case Like:
		return "LIKE"
	default:
		return "?"
	}
}

// compareOrdered maps a three-way comparison result onto op.
func compareOrdered(op Op, cmp int) (bool, error) {
	switch op {
	case Equals, Like:
		return cmp == 0, nil
	case NotEquals:
		return cmp != 0, nil
	case LessThan:
		return cmp < 0, nil
	case LessThanOrEqual:
		return cmp <= 0, nil
	case GreaterThan:
		return cmp > 0, nil
	case GreaterThanOrEqual:
		return cmp >= 0, nil
	default:
		return false, ErrBadOp
	}
}
