package catalog

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// The on-disk document keeps the field names of the original vendor data
// export. JSON documents decode through the same YAML path.
type document struct {
	Vendors   []vendorDoc    `yaml:"vendors"`
	Equipment []equipmentDoc `yaml:"equipment"`
	Products  []productDoc   `yaml:"products"`
}

type vendorDoc struct {
	ID   string `yaml:"vendorid"`
	Name string `yaml:"name"`
}

type equipmentDoc struct {
	ID       string            `yaml:"equipmentid"`
	Name     string            `yaml:"name"`
	Quantity int               `yaml:"qty"`
	Labels   map[string]string `yaml:"labels"`
}

type productDoc struct {
	EquipmentID  string   `yaml:"equipmentid"`
	VendorID     string   `yaml:"vendorid"`
	Vendor       string   `yaml:"vendor"`
	Brand        string   `yaml:"brand"`
	Model        string   `yaml:"model"`
	BasePrice    float64  `yaml:"basePrice"`
	AllInPrice   float64  `yaml:"allInUnitPrice"`
	Quantity     int      `yaml:"qty"`
	OverallScore *float64 `yaml:"overallScore"`
	URL          string   `yaml:"url"`

	// Score (Sxx) and commentary (Cxx) columns.
	Columns map[string]interface{} `yaml:",inline"`
}

// Load reads a catalog document from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML or JSON catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	vendors := make([]Vendor, len(doc.Vendors))
	for i, v := range doc.Vendors {
		vendors[i] = Vendor{ID: v.ID, Name: v.Name}
	}

	equipment := make([]EquipmentType, len(doc.Equipment))
	for i, e := range doc.Equipment {
		equipment[i] = EquipmentType{ID: e.ID, Name: e.Name, DefaultQuantity: e.Quantity, Labels: e.Labels}
	}

	products := make([]Product, 0, len(doc.Products))
	for i, pd := range doc.Products {
		p, err := pd.product()
		if err != nil {
			return nil, fmt.Errorf("product %d (%s/%s): %w", i, pd.EquipmentID, pd.VendorID, err)
		}
		products = append(products, p)
	}

	return New(vendors, equipment, products)
}

func (pd productDoc) product() (Product, error) {
	p := Product{
		EquipmentID: pd.EquipmentID,
		VendorID:    pd.VendorID,
		VendorName:  pd.Vendor,
		Brand:       pd.Brand,
		Model:       pd.Model,
		BasePrice:   pd.BasePrice,
		AllInPrice:  pd.AllInPrice,
		Quantity:    pd.Quantity,
		URL:         pd.URL,
	}
	if p.BasePrice == 0 {
		p.BasePrice = p.AllInPrice
	}
	if pd.OverallScore != nil {
		v := *pd.OverallScore
		p.Overall = &v
	}

	for key, raw := range pd.Columns {
		switch {
		case strings.HasPrefix(strings.ToUpper(key), "S"):
			crit, err := ParseCriterion(key)
			if err != nil {
				return Product{}, err
			}
			v, err := toFloat(raw)
			if err != nil {
				return Product{}, fmt.Errorf("%s: %w", key, err)
			}
			if crit == Overall {
				if p.Overall == nil {
					p.Overall = &v
				}
				continue
			}
			p.Scores[crit] = v
		case strings.HasPrefix(strings.ToUpper(key), "C"):
			text := strings.TrimSpace(fmt.Sprint(raw))
			if raw == nil || text == "" {
				continue
			}
			if p.Commentary == nil {
				p.Commentary = make(map[string]string)
			}
			p.Commentary[strings.ToUpper(key)] = text
		}
	}

	if dims, ok := p.Commentary["C15"]; ok {
		if d, err := ParseDimensions(dims); err == nil {
			p.Dimensions = &d
		}
	}
	return p, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		if strings.TrimSpace(n) == "" {
			return 0, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unexpected score type %T", v)
	}
}
