package planning

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Flat key/value layout of a saved plan
const (
	KeyName          = "name"
	KeyInputs        = "inputs"
	KeyOutputs       = "outputs"
	KeyOutputAmounts = "output_amounts"
	KeyTierPrefix    = "tier."
)

// ErrPlanShapeMismatch indicates a saved plan whose outputs and amounts differ in length
type ErrPlanShapeMismatch struct {
	PlanID  string
	Outputs int
	Amounts int
}

func (e *ErrPlanShapeMismatch) Error() string {
	return fmt.Sprintf("plan %s has %d outputs but %d output amounts", e.PlanID, e.Outputs, e.Amounts)
}

// PlanSnapshot is the persisted form of a planner session: the chosen inputs,
// the target outputs with their rates, and the tier selections in effect.
type PlanSnapshot struct {
	ID             string
	Name           string
	Inputs         []string
	Outputs        []string
	OutputAmounts  []float64
	TierSelections map[string]string
	UpdatedAt      time.Time
}

// ShapeMismatch reports whether outputs and amounts differ in length
func (p *PlanSnapshot) ShapeMismatch() bool {
	return len(p.Outputs) != len(p.OutputAmounts)
}

// Validate returns ErrPlanShapeMismatch when the plan cannot be solved as stored
func (p *PlanSnapshot) Validate() error {
	if p.ShapeMismatch() {
		return &ErrPlanShapeMismatch{PlanID: p.ID, Outputs: len(p.Outputs), Amounts: len(p.OutputAmounts)}
	}
	return nil
}

// Normalize repairs a shape mismatch: missing amounts become zero and
// amounts without an output are dropped. Returns true if anything changed.
func (p *PlanSnapshot) Normalize() bool {
	if !p.ShapeMismatch() {
		return false
	}
	amounts := make([]float64, len(p.Outputs))
	copy(amounts, p.OutputAmounts)
	p.OutputAmounts = amounts
	return true
}

// Targets returns output id to amount. Duplicate outputs are summed.
func (p *PlanSnapshot) Targets() (map[string]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	targets := make(map[string]float64, len(p.Outputs))
	for i, id := range p.Outputs {
		targets[id] += p.OutputAmounts[i]
	}
	return targets, nil
}

// ToKeyValues encodes the snapshot as flat entries.
// Lists use indexed keys such as "outputs.0".
func (p *PlanSnapshot) ToKeyValues() map[string]string {
	kv := make(map[string]string)
	kv[KeyName] = p.Name
	for i, v := range p.Inputs {
		kv[indexedKey(KeyInputs, i)] = v
	}
	for i, v := range p.Outputs {
		kv[indexedKey(KeyOutputs, i)] = v
	}
	for i, v := range p.OutputAmounts {
		kv[indexedKey(KeyOutputAmounts, i)] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	for tier, selection := range p.TierSelections {
		kv[KeyTierPrefix+tier] = selection
	}
	return kv
}

// PlanSnapshotFromKeyValues decodes flat entries. List entries are ordered by
// index; unknown keys are ignored. The result may have a shape mismatch.
func PlanSnapshotFromKeyValues(id string, kv map[string]string) (*PlanSnapshot, error) {
	p := &PlanSnapshot{
		ID:             id,
		Name:           kv[KeyName],
		TierSelections: make(map[string]string),
	}

	inputs := make(map[int]string)
	outputs := make(map[int]string)
	amounts := make(map[int]string)

	for key, value := range kv {
		if strings.HasPrefix(key, KeyTierPrefix) {
			p.TierSelections[strings.TrimPrefix(key, KeyTierPrefix)] = value
			continue
		}
		list, index, ok := parseIndexedKey(key)
		if !ok {
			continue
		}
		switch list {
		case KeyInputs:
			inputs[index] = value
		case KeyOutputs:
			outputs[index] = value
		case KeyOutputAmounts:
			amounts[index] = value
		}
	}

	p.Inputs = orderedValues(inputs)
	p.Outputs = orderedValues(outputs)
	for _, raw := range orderedValues(amounts) {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("plan %s: invalid output amount %q", id, raw)
		}
		p.OutputAmounts = append(p.OutputAmounts, v)
	}
	return p, nil
}

func indexedKey(list string, i int) string {
	return list + "." + strconv.Itoa(i)
}

func parseIndexedKey(key string) (string, int, bool) {
	list, rawIndex, ok := strings.Cut(key, ".")
	if !ok {
		return "", 0, false
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil || index < 0 {
		return "", 0, false
	}
	return list, index, true
}

func orderedValues(m map[int]string) []string {
	indexes := make([]int, 0, len(m))
	for i := range m {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	values := make([]string, 0, len(indexes))
	for _, i := range indexes {
		values = append(values, m[i])
	}
	return values
}
