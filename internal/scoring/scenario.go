package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
)

// TieTolerance is the absolute distance within which two rank scores are
// considered equal. Among tied products the first in catalog order wins.
const TieTolerance = 0.001

var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrUnknownVendor   = errors.New("unknown vendor")
)

type ScenarioID string

const (
	HighestOverall       ScenarioID = "highestOverall"
	SingleVendor         ScenarioID = "singleVendor"
	SelectVendor         ScenarioID = "selectVendor"
	Custom               ScenarioID = "custom"
	MostReliable         ScenarioID = "mostReliable"
	GreatestEaseOfUse    ScenarioID = "greatestEaseOfUse"
	HighestVendorQuality ScenarioID = "highestVendorQuality"
	LowestPrice          ScenarioID = "lowestPrice"
	BestLooking          ScenarioID = "bestLooking"
	BestBuildQuality     ScenarioID = "bestBuildQuality"
	MostDurable          ScenarioID = "mostDurable"
	BestServiceParts     ScenarioID = "bestServiceParts"
	BestWarranty         ScenarioID = "bestWarranty"
	SmallestFootprint    ScenarioID = "smallestFootprint"
)

// ScenarioKind is the selection strategy of a scenario.
type ScenarioKind int

const (
	// CriterionBest picks, per equipment type, the product with the best
	// rank score.
	CriterionBest ScenarioKind = iota
	// BestVendor picks the vendor with the best average and takes all of
	// its products.
	BestVendor
	// ExplicitVendor takes all products of a caller-chosen vendor.
	ExplicitVendor
	// FreeForm starts empty and is edited by hand.
	FreeForm
)

var kindNames = [...]string{"criterion_best", "best_vendor", "explicit_vendor", "free_form"}

func (k ScenarioKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func (k ScenarioKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type Scenario struct {
	ID          ScenarioID        `json:"id"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Criterion   catalog.Criterion `json:"criterion"`
	Kind        ScenarioKind      `json:"kind"`
}

var scenarios = []Scenario{
	{HighestOverall, "Highest Equipment Overall Score", "Equipment with the highest overall score", catalog.Overall, CriterionBest},
	{SingleVendor, "Highest Vendor Overall Score", "Vendor with the highest average score", catalog.Overall, BestVendor},
	{SelectVendor, "Select Specific Vendor", "Choose a specific vendor for all equipment", catalog.Overall, ExplicitVendor},
	{Custom, "Custom", "Allow the user to select", catalog.Overall, FreeForm},
	{MostReliable, "Most Reliable", "Equipment with the highest reliability score", catalog.Reliability, CriterionBest},
	{GreatestEaseOfUse, "Greatest Ease of Use", "Equipment with the highest ease of use score", catalog.EaseOfUse, CriterionBest},
	{HighestVendorQuality, "Highest Vendor Quality", "Equipment with the highest vendor quality score", catalog.EquipmentSpecific, CriterionBest},
	{LowestPrice, "Lowest Price", "Equipment with the highest price score", catalog.Price, CriterionBest},
	{BestLooking, "Best Looking", "Equipment with the highest aesthetics score", catalog.Aesthetics, CriterionBest},
	{BestBuildQuality, "Best Build Quality", "Equipment with the highest build quality score", catalog.BuildQuality, CriterionBest},
	{MostDurable, "Most Durable", "Equipment with the highest durability score", catalog.Durability, CriterionBest},
	{BestServiceParts, "Best Svc/Parts Availability", "Equipment with the highest svc/parts availability score", catalog.ServiceParts, CriterionBest},
	{BestWarranty, "Best Warranty", "Equipment with the highest warranty score", catalog.Warranty, CriterionBest},
	{SmallestFootprint, "Smallest Footprint", "Equipment with the highest footprint score", catalog.Footprint, CriterionBest},
}

// Scenarios lists every scenario in display order.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

func LookupScenario(id ScenarioID) (Scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

type ResolveInput struct {
	Scenario ScenarioID
	// VendorID is required by ExplicitVendor scenarios and ignored otherwise.
	VendorID string
	// Weights applies to rank scores on the Overall criterion. Nil uses the
	// catalog's precomputed overall scores.
	Weights *Weights
}

// Resolve computes the selection a scenario produces from scratch.
func Resolve(cat *catalog.Catalog, in ResolveInput) (Selection, error) {
	sc, ok := LookupScenario(in.Scenario)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, in.Scenario)
	}

	sel := make(Selection)
	switch sc.Kind {
	case CriterionBest:
		for _, e := range cat.Equipment() {
			if p, ok := bestProduct(cat.ProductsFor(e.ID), sc.Criterion, in.Weights); ok {
				sel[e.ID] = p.VendorID
			}
		}
	case BestVendor:
		vendorID, _ := BestVendorFor(cat, sc.Criterion, in.Weights)
		assignVendor(cat, sel, vendorID)
	case ExplicitVendor:
		if _, ok := cat.Vendor(in.VendorID); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVendor, in.VendorID)
		}
		assignVendor(cat, sel, in.VendorID)
	case FreeForm:
	}
	return sel, nil
}

// BestVendorFor returns the vendor with the strictly highest average along
// with every vendor's average. The first vendor wins ties; with no vendors the
// ID is empty.
func BestVendorFor(cat *catalog.Catalog, c catalog.Criterion, w *Weights) (string, map[string]float64) {
	averages := VendorAverages(cat, c, w)
	best, bestAvg := "", -1.0
	for _, v := range cat.Vendors() {
		if avg := averages[v.ID]; avg > bestAvg {
			best, bestAvg = v.ID, avg
		}
	}
	return best, averages
}

func bestProduct(products []catalog.Product, c catalog.Criterion, w *Weights) (catalog.Product, bool) {
	if len(products) == 0 {
		return catalog.Product{}, false
	}
	top := math.Inf(-1)
	for _, p := range products {
		top = max(top, RankScore(p, c, w))
	}
	for _, p := range products {
		if math.Abs(RankScore(p, c, w)-top) < TieTolerance {
			return p, true
		}
	}
	return products[0], true
}

func assignVendor(cat *catalog.Catalog, sel Selection, vendorID string) {
	if vendorID == "" {
		return
	}
	for _, e := range cat.Equipment() {
		if _, ok := cat.Product(e.ID, vendorID); ok {
			sel[e.ID] = vendorID
		}
	}
}
