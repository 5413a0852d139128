package catalog

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
)

var (
	ErrUnknownCriterion = errors.New("unknown criterion")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrDuplicateProduct = errors.New("duplicate product for equipment/vendor pair")
	ErrUnknownReference = errors.New("unknown reference")
	ErrScoreRange       = errors.New("score out of range")
	ErrPriceRange       = errors.New("price out of range")
	ErrMissingID        = errors.New("missing id")
)

// MaxScore is the top of the 0–10 scale.
const MaxScore = 10.0

// validScore rejects NaN along with anything off the 0..MaxScore scale.
func validScore(s float64) bool { return s >= 0 && s <= MaxScore }

func validPrice(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }

type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EquipmentType struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// DefaultQuantity seeds the quantity plan.
	DefaultQuantity int `json:"default_quantity"`

	// Labels overrides criterion labels for this equipment type, keyed by code.
	Labels map[string]string `json:"labels,omitempty"`
}

// Product is one vendor's quoted offering for one equipment type.
type Product struct {
	EquipmentID string  `json:"equipment_id"`
	VendorID    string  `json:"vendor_id"`
	VendorName  string  `json:"vendor"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	BasePrice   float64 `json:"base_price"`
	AllInPrice  float64 `json:"all_in_price"`
	Quantity    int     `json:"qty,omitempty"`
	Scores      Scores  `json:"scores"`

	// Overall is the catalog's precomputed overall score at default weights.
	Overall *float64 `json:"overall,omitempty"`

	Commentary map[string]string `json:"commentary,omitempty"`
	URL        string            `json:"url,omitempty"`
	Dimensions *Dimensions       `json:"dimensions,omitempty"`
}

// Score returns the raw score for c. For Overall it returns the precomputed
// overall score, or 0 when the catalog carries none.
func (p Product) Score(c Criterion) float64 {
	if c == Overall {
		if p.Overall != nil {
			return *p.Overall
		}
		return 0
	}
	return p.Scores.Get(c)
}

// Catalog is the immutable reference data set. Iteration order of vendors,
// equipment and products is the order they were supplied in.
type Catalog struct {
	vendors   []Vendor
	equipment []EquipmentType
	products  []Product

	vendorIdx    map[string]int
	equipmentIdx map[string]int
	productIdx   map[pairKey]int
	byEquipment  map[string][]int
}

type pairKey struct {
	equipment string
	vendor    string
}

// New validates and indexes the given entities.
func New(vendors []Vendor, equipment []EquipmentType, products []Product) (*Catalog, error) {
	c := &Catalog{
		vendors:      slices.Clone(vendors),
		equipment:    make([]EquipmentType, len(equipment)),
		products:     make([]Product, len(products)),
		vendorIdx:    make(map[string]int, len(vendors)),
		equipmentIdx: make(map[string]int, len(equipment)),
		productIdx:   make(map[pairKey]int, len(products)),
		byEquipment:  make(map[string][]int, len(equipment)),
	}

	for i, v := range c.vendors {
		if v.ID == "" {
			return nil, fmt.Errorf("vendor %d: %w", i, ErrMissingID)
		}
		if _, dup := c.vendorIdx[v.ID]; dup {
			return nil, fmt.Errorf("vendor %s: %w", v.ID, ErrDuplicateID)
		}
		c.vendorIdx[v.ID] = i
	}

	for i, e := range equipment {
		if e.ID == "" {
			return nil, fmt.Errorf("equipment %d: %w", i, ErrMissingID)
		}
		if _, dup := c.equipmentIdx[e.ID]; dup {
			return nil, fmt.Errorf("equipment %s: %w", e.ID, ErrDuplicateID)
		}
		e.Labels = maps.Clone(e.Labels)
		c.equipment[i] = e
		c.equipmentIdx[e.ID] = i
	}

	for i, p := range products {
		if _, ok := c.equipmentIdx[p.EquipmentID]; !ok {
			return nil, fmt.Errorf("product %d: equipment %q: %w", i, p.EquipmentID, ErrUnknownReference)
		}
		vi, ok := c.vendorIdx[p.VendorID]
		if !ok {
			return nil, fmt.Errorf("product %d: vendor %q: %w", i, p.VendorID, ErrUnknownReference)
		}
		key := pairKey{p.EquipmentID, p.VendorID}
		if _, dup := c.productIdx[key]; dup {
			return nil, fmt.Errorf("%s/%s: %w", p.EquipmentID, p.VendorID, ErrDuplicateProduct)
		}
		if !validPrice(p.BasePrice) || !validPrice(p.AllInPrice) {
			return nil, fmt.Errorf("%s/%s base=%v all-in=%v: %w", p.EquipmentID, p.VendorID, p.BasePrice, p.AllInPrice, ErrPriceRange)
		}
		for j, s := range p.Scores {
			if !validScore(s) {
				return nil, fmt.Errorf("%s/%s %s=%.2f: %w", p.EquipmentID, p.VendorID, Criterion(j).Code(), s, ErrScoreRange)
			}
		}
		if p.Overall != nil {
			if !validScore(*p.Overall) {
				return nil, fmt.Errorf("%s/%s %s=%.2f: %w", p.EquipmentID, p.VendorID, Overall.Code(), *p.Overall, ErrScoreRange)
			}
			v := *p.Overall
			p.Overall = &v
		}
		if p.VendorName == "" {
			p.VendorName = c.vendors[vi].Name
		}
		if p.Dimensions != nil {
			d := *p.Dimensions
			p.Dimensions = &d
		}
		p.Commentary = maps.Clone(p.Commentary)
		c.products[i] = p
		c.productIdx[key] = i
		c.byEquipment[p.EquipmentID] = append(c.byEquipment[p.EquipmentID], i)
	}

	for i := range c.equipment {
		if c.equipment[i].DefaultQuantity > 0 {
			continue
		}
		c.equipment[i].DefaultQuantity = 1
		if idx := c.byEquipment[c.equipment[i].ID]; len(idx) > 0 && c.products[idx[0]].Quantity > 0 {
			c.equipment[i].DefaultQuantity = c.products[idx[0]].Quantity
		}
	}

	return c, nil
}

func (c *Catalog) Vendors() []Vendor { return slices.Clone(c.vendors) }

func (c *Catalog) Equipment() []EquipmentType {
	out := make([]EquipmentType, len(c.equipment))
	for i, e := range c.equipment {
		e.Labels = maps.Clone(e.Labels)
		out[i] = e
	}
	return out
}

// Products returns every product in catalog order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	for i := range c.products {
		out[i] = c.products[i].clone()
	}
	return out
}

// EquipmentCount is the divisor used for vendor averages.
func (c *Catalog) EquipmentCount() int { return len(c.equipment) }

func (c *Catalog) Vendor(id string) (Vendor, bool) {
	i, ok := c.vendorIdx[id]
	if !ok {
		return Vendor{}, false
	}
	return c.vendors[i], true
}

func (c *Catalog) EquipmentType(id string) (EquipmentType, bool) {
	i, ok := c.equipmentIdx[id]
	if !ok {
		return EquipmentType{}, false
	}
	e := c.equipment[i]
	e.Labels = maps.Clone(e.Labels)
	return e, true
}

// Product returns the product quoted by vendorID for equipmentID, if any.
func (c *Catalog) Product(equipmentID, vendorID string) (Product, bool) {
	i, ok := c.productIdx[pairKey{equipmentID, vendorID}]
	if !ok {
		return Product{}, false
	}
	return c.products[i].clone(), true
}

// ProductsFor returns the products for an equipment type in catalog order.
func (c *Catalog) ProductsFor(equipmentID string) []Product {
	idx := c.byEquipment[equipmentID]
	out := make([]Product, len(idx))
	for i, pi := range idx {
		out[i] = c.products[pi].clone()
	}
	return out
}

// DefaultQuantities returns a fresh equipment → quantity map.
func (c *Catalog) DefaultQuantities() map[string]int {
	out := make(map[string]int, len(c.equipment))
	for _, e := range c.equipment {
		out[e.ID] = e.DefaultQuantity
	}
	return out
}

func (p Product) clone() Product {
	if p.Overall != nil {
		v := *p.Overall
		p.Overall = &v
	}
	if p.Dimensions != nil {
		d := *p.Dimensions
		p.Dimensions = &d
	}
	p.Commentary = maps.Clone(p.Commentary)
	return p
}
