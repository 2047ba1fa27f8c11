package metrics

// ClassScore is one-vs-rest performance for a single class, as fractions.
type ClassScore struct {
	TP        int
	FP        int
	FN        int
	Precision float64
	Recall    float64
	F1        float64
}

// MulticlassMatrix counts (expected, actual) pairs over a fixed class list.
type MulticlassMatrix struct {
	classes []string
	index   map[string]int
	cells   [][]int
}

// NewMulticlassMatrix creates an empty matrix over classes. Class order is
// preserved in all outputs.
func NewMulticlassMatrix(classes []string) *MulticlassMatrix {
	m := &MulticlassMatrix{
		classes: append([]string(nil), classes...),
		index:   make(map[string]int, len(classes)),
		cells:   make([][]int, len(classes)),
	}
	for i, c := range classes {
		m.index[c] = i
		m.cells[i] = make([]int, len(classes))
	}
	return m
}

// Classes returns the class list in configured order.
func (m *MulticlassMatrix) Classes() []string {
	return append([]string(nil), m.classes...)
}

// Has reports whether class is one of the configured classes.
func (m *MulticlassMatrix) Has(class string) bool {
	_, ok := m.index[class]
	return ok
}

// Record counts one pair. It returns false, recording nothing, when either
// label is not a configured class.
func (m *MulticlassMatrix) Record(expected, actual string) bool {
	i, ok := m.index[expected]
	if !ok {
		return false
	}
	j, ok := m.index[actual]
	if !ok {
		return false
	}
	m.cells[i][j]++
	return true
}

// Count returns the number of pairs with the given labels.
func (m *MulticlassMatrix) Count(expected, actual string) int {
	i, ok := m.index[expected]
	if !ok {
		return 0
	}
	j, ok := m.index[actual]
	if !ok {
		return 0
	}
	return m.cells[i][j]
}

// Total is the number of recorded pairs.
func (m *MulticlassMatrix) Total() int {
	total := 0
	for _, row := range m.cells {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Correct is the number of pairs on the diagonal.
func (m *MulticlassMatrix) Correct() int {
	correct := 0
	for i := range m.cells {
		correct += m.cells[i][i]
	}
	return correct
}

// Accuracy is Correct/Total, 0 for an empty matrix.
func (m *MulticlassMatrix) Accuracy() float64 {
	return safeDivide(float64(m.Correct()), float64(m.Total()))
}

// ClassScore computes one-vs-rest metrics for class.
func (m *MulticlassMatrix) ClassScore(class string) ClassScore {
	k, ok := m.index[class]
	if !ok {
		return ClassScore{}
	}
	var s ClassScore
	s.TP = m.cells[k][k]
	for other := range m.classes {
		if other == k {
			continue
		}
		s.FP += m.cells[other][k]
		s.FN += m.cells[k][other]
	}
	s.Precision = safeDivide(float64(s.TP), float64(s.TP+s.FP))
	s.Recall = safeDivide(float64(s.TP), float64(s.TP+s.FN))
	s.F1 = F1(s.Precision, s.Recall)
	return s
}

// MacroF1 averages per-class F1 over every configured class.
func (m *MulticlassMatrix) MacroF1() float64 {
	if len(m.classes) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range m.classes {
		sum += m.ClassScore(c).F1
	}
	return sum / float64(len(m.classes))
}

// OneVsRest collapses the matrix into binary counts with positive as the
// positive class.
func (m *MulticlassMatrix) OneVsRest(positive string) ConfusionCounts {
	s := m.ClassScore(positive)
	return ConfusionCounts{
		TP: s.TP,
		FP: s.FP,
		FN: s.FN,
		TN: m.Total() - s.TP - s.FP - s.FN,
	}
}

// ExpectedDistribution counts pairs by expected class.
func (m *MulticlassMatrix) ExpectedDistribution() map[string]int {
	out := make(map[string]int, len(m.classes))
	for i, c := range m.classes {
		for j := range m.classes {
			out[c] += m.cells[i][j]
		}
	}
	return out
}

// ActualDistribution counts pairs by actual class.
func (m *MulticlassMatrix) ActualDistribution() map[string]int {
	out := make(map[string]int, len(m.classes))
	for j, c := range m.classes {
		for i := range m.classes {
			out[c] += m.cells[i][j]
		}
	}
	return out
}

// Nested returns the matrix as expected -> actual -> count.
func (m *MulticlassMatrix) Nested() map[string]map[string]int {
	out := make(map[string]map[string]int, len(m.classes))
	for i, e := range m.classes {
		row := make(map[string]int, len(m.classes))
		for j, a := range m.classes {
			row[a] = m.cells[i][j]
		}
		out[e] = row
	}
	return out
}
