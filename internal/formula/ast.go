package formula

// node is one element of a parsed expression tree.
type node interface {
	eval(measurement float64) (float64, error)
	usesVariable() bool
}

type numberNode struct {
	value float64
}

func (n numberNode) eval(float64) (float64, error) { return n.value, nil }
func (n numberNode) usesVariable() bool            { return false }

type variableNode struct{}

func (variableNode) eval(measurement float64) (float64, error) { return measurement, nil }
func (variableNode) usesVariable() bool                        { return true }

type negateNode struct {
	operand node
}

func (n negateNode) eval(m float64) (float64, error) {
	v, err := n.operand.eval(m)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n negateNode) usesVariable() bool { return n.operand.usesVariable() }

type binaryNode struct {
	left  node
	right node
	src   string
	op    byte
}

func (n binaryNode) eval(m float64) (float64, error) {
	l, err := n.left.eval(m)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(m)
	if err != nil {
		return 0, err
	}

	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, newError(n.src, "division by zero")
		}
		return l / r, nil
	default:
		return 0, newError(n.src, "unknown operator %c", n.op)
	}
}

func (n binaryNode) usesVariable() bool {
	return n.left.usesVariable() || n.right.usesVariable()
}
