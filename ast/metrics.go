package ast

// Children returns a node's left and right subtrees in the binary shape the
// tree metrics are defined over. Either may be nil.
func Children(n Node) (left, right Node) {
	switch v := n.(type) {
	case *StmtList:
		if v.Rest != nil {
			return v.Stmt, v.Rest
		}
		return v.Stmt, nil
	case If:
		return v.Cond, bodyNode(v.Body)
	case Loop:
		return v.Cond, bodyNode(v.Body)
	case Set:
		return v.Value, nil
	case Print:
		return v.Value, nil
	case Addition:
		return v.Left, v.Right
	case Subtraction:
		return v.Left, v.Right
	case Multiplication:
		return v.Left, v.Right
	case Division:
		return v.Left, v.Right
	}
	return nil, nil
}

func bodyNode(l *StmtList) Node {
	if l == nil {
		return nil
	}
	return l
}

func IsOperator(n Node) bool {
	switch n.(type) {
	case Addition, Subtraction, Multiplication, Division:
		return true
	}
	return false
}

type Stats struct {
	Nodes    int `yaml:"nodes"`
	Leaves   int `yaml:"leaves"`
	Ops      int `yaml:"operators"`
	Strings  int `yaml:"strings"`
	MaxDepth int `yaml:"max_depth"`
}

// Measure walks the tree once and collects all metrics.
func Measure(n Node) Stats {
	var s Stats
	s.MaxDepth = measure(n, &s)
	return s
}

func measure(n Node, s *Stats) (depth int) {
	if n == nil {
		return 0
	}
	s.Nodes++
	if IsOperator(n) {
		s.Ops++
	}
	if _, ok := n.(StringLiteral); ok {
		s.Strings++
	}

	left, right := Children(n)
	if left == nil && right == nil {
		s.Leaves++
	}

	l := measure(left, s)
	r := measure(right, s)
	if l > r {
		return l + 1
	}
	return r + 1
}

func NodeCount(n Node) int   { return Measure(n).Nodes }
func LeafCount(n Node) int   { return Measure(n).Leaves }
func OpsCount(n Node) int    { return Measure(n).Ops }
func StringCount(n Node) int { return Measure(n).Strings }
func MaxDepth(n Node) int    { return Measure(n).MaxDepth }
