package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func TestLoadTestdata(t *testing.T) {
	c, err := Load("testdata/catalog.yaml")
	require.NoError(t, err)

	assert.Len(t, c.Vendors(), 2)
	assert.Len(t, c.Equipment(), 3)
	assert.Len(t, c.Products(), 3)
	assert.Equal(t, 3, c.EquipmentCount())

	p, ok := c.Product("E01", "V01")
	require.True(t, ok)
	assert.Equal(t, "Life Fitness", p.Brand)
	assert.Equal(t, 1000.0, p.AllInPrice)
	assert.Equal(t, 1000.0, p.BasePrice, "base price defaults to all-in price")
	assert.Equal(t, 9.0, p.Score(Reliability))
	assert.Equal(t, 10.0, p.Score(Price))
	assert.Equal(t, 8.6, p.Score(Overall))
	assert.Equal(t, "Very few service calls.", p.Commentary["C08"])
	require.NotNil(t, p.Dimensions)
	assert.Equal(t, 83.0*35.0, p.Dimensions.FootprintSqIn())

	// vendor name falls back to the vendor record
	p2, ok := c.Product("E01", "V02")
	require.True(t, ok)
	assert.Equal(t, "Beta Commercial", p2.VendorName)
	assert.Nil(t, p2.Overall)
	assert.Equal(t, 0.0, p2.Score(Overall))
	assert.Equal(t, 0.0, p2.Score(Aesthetics), "missing scores are zero")
	assert.Nil(t, p2.Dimensions, "unparseable dimensions are dropped")

	bench, ok := c.Product("E02", "V02")
	require.True(t, ok)
	assert.Equal(t, 6.5, bench.Score(EquipmentSpecific), "S02b aliases S03")
	assert.Equal(t, 7.25, bench.Score(Overall), "S12 column sets the overall score")
	assert.Equal(t, 450.0, bench.BasePrice)

	_, ok = c.Product("E03", "V01")
	assert.False(t, ok, "absent product is not an error")
}

func TestLoadShippedCatalog(t *testing.T) {
	c, err := Load("../../data/catalog.json")
	require.NoError(t, err)
	assert.Len(t, c.Vendors(), 5)
	assert.Equal(t, 8, c.EquipmentCount())
	for _, p := range c.Products() {
		require.NotNil(t, p.Overall, "%s/%s", p.EquipmentID, p.VendorID)
	}
}

func TestDefaultQuantities(t *testing.T) {
	c, err := Load("testdata/catalog.yaml")
	require.NoError(t, err)

	q := c.DefaultQuantities()
	assert.Equal(t, 2, q["E01"], "first product's qty wins")
	assert.Equal(t, 1, q["E02"])
	assert.Equal(t, 1, q["E03"], "equipment without products defaults to 1")

	q["E01"] = 99
	assert.Equal(t, 2, c.DefaultQuantities()["E01"], "returned map is a copy")
}

func TestProductsForKeepsCatalogOrder(t *testing.T) {
	c, err := New(
		[]Vendor{{ID: "V01"}, {ID: "V02"}, {ID: "V03"}},
		[]EquipmentType{{ID: "E01"}},
		[]Product{
			{EquipmentID: "E01", VendorID: "V03"},
			{EquipmentID: "E01", VendorID: "V01"},
			{EquipmentID: "E01", VendorID: "V02"},
		},
	)
	require.NoError(t, err)

	var got []string
	for _, p := range c.ProductsFor("E01") {
		got = append(got, p.VendorID)
	}
	assert.Equal(t, []string{"V03", "V01", "V02"}, got)
	assert.Empty(t, c.ProductsFor("E99"))
}

func TestNewValidation(t *testing.T) {
	vendors := []Vendor{{ID: "V01", Name: "A"}}
	equipment := []EquipmentType{{ID: "E01", Name: "Rower"}}

	tests := []struct {
		name      string
		vendors   []Vendor
		equipment []EquipmentType
		products  []Product
		want      error
	}{
		{
			name:     "duplicate product",
			products: []Product{{EquipmentID: "E01", VendorID: "V01"}, {EquipmentID: "E01", VendorID: "V01"}},
			want:     ErrDuplicateProduct,
		},
		{
			name:     "unknown vendor",
			products: []Product{{EquipmentID: "E01", VendorID: "V09"}},
			want:     ErrUnknownReference,
		},
		{
			name:     "unknown equipment",
			products: []Product{{EquipmentID: "E09", VendorID: "V01"}},
			want:     ErrUnknownReference,
		},
		{
			name:     "score above ten",
			products: []Product{{EquipmentID: "E01", VendorID: "V01", Scores: Scores{Price: 10.5}}},
			want:     ErrScoreRange,
		},
		{
			name:     "negative overall",
			products: []Product{{EquipmentID: "E01", VendorID: "V01", Overall: float64Ptr(-1)}},
			want:     ErrScoreRange,
		},
		{
			name:     "NaN score",
			products: []Product{{EquipmentID: "E01", VendorID: "V01", Scores: Scores{Reliability: math.NaN()}}},
			want:     ErrScoreRange,
		},
		{
			name:     "infinite score",
			products: []Product{{EquipmentID: "E01", VendorID: "V01", Scores: Scores{Weight: math.Inf(1)}}},
			want:     ErrScoreRange,
		},
		{
			name:     "NaN overall",
			products: []Product{{EquipmentID: "E01", VendorID: "V01", Overall: float64Ptr(math.NaN())}},
			want:     ErrScoreRange,
		},
		{
			name:     "negative price",
			products: []Product{{EquipmentID: "E01", VendorID: "V01", AllInPrice: -12.34}},
			want:     ErrPriceRange,
		},
		{
			name:     "NaN price",
			products: []Product{{EquipmentID: "E01", VendorID: "V01", BasePrice: math.NaN()}},
			want:     ErrPriceRange,
		},
		{
			name:    "duplicate vendor",
			vendors: []Vendor{{ID: "V01"}, {ID: "V01"}},
			want:    ErrDuplicateID,
		},
		{
			name:      "missing equipment id",
			equipment: []EquipmentType{{Name: "Bench"}},
			want:      ErrMissingID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, e := vendors, equipment
			if tt.vendors != nil {
				v = tt.vendors
			}
			if tt.equipment != nil {
				e = tt.equipment
			}
			_, err := New(v, e, tt.products)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseRejectsNaNScores(t *testing.T) {
	for _, raw := range []string{`"NaN"`, `.nan`, `"Inf"`} {
		t.Run(raw, func(t *testing.T) {
			doc := `
vendors: [{vendorid: V01, name: A}]
equipment: [{equipmentid: E01, name: Rower}]
products:
  - {equipmentid: E01, vendorid: V01, S01: ` + raw + `}
`
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrScoreRange)
		})
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	c, err := New(
		[]Vendor{{ID: "V01"}},
		[]EquipmentType{{ID: "E01"}},
		[]Product{{EquipmentID: "E01", VendorID: "V01", Overall: float64Ptr(7), Commentary: map[string]string{"C08": "ok"}}},
	)
	require.NoError(t, err)

	p, _ := c.Product("E01", "V01")
	*p.Overall = 1
	p.Commentary["C08"] = "changed"
	p.Scores[Reliability] = 3

	again, _ := c.Product("E01", "V01")
	assert.Equal(t, 7.0, *again.Overall)
	assert.Equal(t, "ok", again.Commentary["C08"])
	assert.Equal(t, 0.0, again.Scores[Reliability])
}

func TestLabels(t *testing.T) {
	c, err := Load("testdata/catalog.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Step Up Score", c.Label("E01", EquipmentSpecific))
	assert.Equal(t, "Adjustability Score", c.Label("E02", EquipmentSpecific), "catalog override wins")
	assert.Equal(t, "Accessibility Score", c.Label("E03", EquipmentSpecific))
	assert.Equal(t, "Reliability", c.Label("E01", Reliability))
	assert.Equal(t, "Stack/Step Up", c.Label("E99", EquipmentSpecific))

	labels := c.Labels("E01")
	assert.Len(t, labels, NumWeighted+1)
	assert.Equal(t, "Overall", labels["S12"])
}

func TestParseCriterion(t *testing.T) {
	tests := []struct {
		code string
		want Criterion
	}{
		{"S01", Reliability},
		{"s04", Price},
		{" S11 ", Weight},
		{"S12", Overall},
		{"S02b", EquipmentSpecific},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseCriterion(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCriterion("S13")
	assert.ErrorIs(t, err, ErrUnknownCriterion)
}

func TestCriteriaDefaults(t *testing.T) {
	var sum int
	for _, c := range WeightedCriteria() {
		assert.True(t, c.Weighted())
		sum += c.DefaultWeight()
	}
	assert.Equal(t, 100, sum)
	assert.False(t, Overall.Weighted())
	assert.Equal(t, KindCalculated, Overall.Kind())
	assert.Len(t, Criteria(), NumWeighted+1)
}

func TestScoresJSON(t *testing.T) {
	in := Scores{Reliability: 9, Weight: 2.5}
	data, err := in.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"S01":9`)
	assert.Contains(t, string(data), `"S11":2.5`)

	var out Scores
	require.NoError(t, out.UnmarshalJSON(data))
	assert.Equal(t, in, out)
}

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		in      string
		want    Dimensions
		wantErr bool
	}{
		{"83 x 35 x 60", Dimensions{83, 35, 60}, false},
		{"55X28", Dimensions{55, 28, 0}, false},
		{`62" × 58" × 84"`, Dimensions{62, 58, 84}, false},
		{"48.5 x 20in", Dimensions{48.5, 20, 0}, false},
		{"tall", Dimensions{}, true},
		{"1 x 2 x 3 x 4", Dimensions{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDimensions(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
