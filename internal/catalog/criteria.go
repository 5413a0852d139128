package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Criterion identifies one evaluation axis. The weighted criteria occupy
// 0..NumWeighted-1 so they can index Scores directly; Overall is derived.
type Criterion int

const (
	Reliability Criterion = iota
	EaseOfUse
	EquipmentSpecific
	Price
	Aesthetics
	BuildQuality
	Durability
	ServiceParts
	Warranty
	Footprint
	Weight

	// Overall is the weighted combination of the criteria above (S12).
	Overall
)

// NumWeighted is the number of criteria that carry a weight.
const NumWeighted = int(Overall)

// CriterionKind tags how a criterion's raw score is produced.
type CriterionKind string

const (
	KindQuantitative CriterionKind = "quantitative"
	KindQualitative  CriterionKind = "qualitative"
	KindCalculated   CriterionKind = "calculated"
)

type criterionInfo struct {
	code          string
	label         string
	kind          CriterionKind
	defaultWeight int
}

var criteria = [...]criterionInfo{
	Reliability:       {"S01", "Reliability", KindQualitative, 22},
	EaseOfUse:         {"S02", "Ease of Use", KindQualitative, 18},
	EquipmentSpecific: {"S03", "Stack/Step Up", KindQuantitative, 6},
	Price:             {"S04", "Price", KindQuantitative, 12},
	Aesthetics:        {"S05", "Aesthetics", KindQualitative, 12},
	BuildQuality:      {"S06", "Build Quality", KindQualitative, 8},
	Durability:        {"S07", "Durability", KindQualitative, 8},
	ServiceParts:      {"S08", "Svc/Parts Availability", KindQualitative, 8},
	Warranty:          {"S09", "Warranty", KindQuantitative, 4},
	Footprint:         {"S10", "Footprint", KindQuantitative, 1},
	Weight:            {"S11", "Weight", KindQuantitative, 1},
	Overall:           {"S12", "Overall", KindCalculated, 0},
}

// Criteria returns every criterion in code order, Overall last.
func Criteria() []Criterion {
	out := make([]Criterion, 0, len(criteria))
	for i := range criteria {
		out = append(out, Criterion(i))
	}
	return out
}

// WeightedCriteria returns S01..S11.
func WeightedCriteria() []Criterion {
	out := make([]Criterion, NumWeighted)
	for i := range out {
		out[i] = Criterion(i)
	}
	return out
}

func (c Criterion) valid() bool { return c >= 0 && int(c) < len(criteria) }

// Code returns the catalog code, e.g. "S04".
func (c Criterion) Code() string {
	if !c.valid() {
		return fmt.Sprintf("S??(%d)", int(c))
	}
	return criteria[c].code
}

// Label returns the generic display label. Equipment-specific wording lives
// in the catalog's label table.
func (c Criterion) Label() string {
	if !c.valid() {
		return ""
	}
	return criteria[c].label
}

func (c Criterion) Kind() CriterionKind {
	if !c.valid() {
		return ""
	}
	return criteria[c].kind
}

// DefaultWeight returns the default percentage weight; 0 for Overall.
func (c Criterion) DefaultWeight() int {
	if !c.valid() {
		return 0
	}
	return criteria[c].defaultWeight
}

// Weighted reports whether the criterion carries a weight.
func (c Criterion) Weighted() bool { return c >= 0 && int(c) < NumWeighted }

func (c Criterion) String() string { return c.Code() }

// MarshalText encodes the criterion as its code.
func (c Criterion) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("invalid criterion %d", int(c))
	}
	return []byte(c.Code()), nil
}

func (c *Criterion) UnmarshalText(text []byte) error {
	parsed, err := ParseCriterion(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCriterion maps a code such as "S01" to its Criterion. The historical
// "S02b" code refers to the equipment-specific criterion.
func ParseCriterion(code string) (Criterion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "S02B" {
		return EquipmentSpecific, nil
	}
	for i, info := range criteria {
		if info.code == code {
			return Criterion(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCriterion, code)
}

// Scores holds one 0–10 score per weighted criterion, 10 being best.
type Scores [NumWeighted]float64

// Get returns the score for a weighted criterion, 0 for anything else.
func (s Scores) Get(c Criterion) float64 {
	if !c.Weighted() {
		return 0
	}
	return s[c]
}

// MarshalJSON encodes scores keyed by criterion code.
func (s Scores) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumWeighted)
	for i, v := range s {
		m[Criterion(i).Code()] = v
	}
	return json.Marshal(m)
}

func (s *Scores) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Scores
	for code, v := range m {
		c, err := ParseCriterion(code)
		if err != nil {
			return err
		}
		if !c.Weighted() {
			continue
		}
		out[c] = v
	}
	*s = out
	return nil
}
