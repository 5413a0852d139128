package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

func float64Ptr(v float64) *float64 { return &v }

// testCatalog: V01 wins E01 on overall, V02 wins E02; E03 only quoted by V01.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]catalog.Vendor{{ID: "V01", Name: "Alpha"}, {ID: "V02", Name: "Beta"}},
		[]catalog.EquipmentType{{ID: "E01", Name: "Treadmill"}, {ID: "E02", Name: "Bench"}, {ID: "E03", Name: "Rower"}},
		[]catalog.Product{
			{EquipmentID: "E01", VendorID: "V01", Brand: "Life", AllInPrice: 1000, Quantity: 2, Overall: float64Ptr(9),
				Scores: catalog.Scores{catalog.Reliability: 6, catalog.Price: 10}},
			{EquipmentID: "E01", VendorID: "V02", Brand: "Precor", AllInPrice: 1200, Overall: float64Ptr(7),
				Scores: catalog.Scores{catalog.Reliability: 9, catalog.Price: 8}},
			{EquipmentID: "E02", VendorID: "V01", Brand: "Life", AllInPrice: 500, Overall: float64Ptr(6),
				Scores: catalog.Scores{catalog.Reliability: 5}},
			{EquipmentID: "E02", VendorID: "V02", Brand: "Hoist", AllInPrice: 450, Overall: float64Ptr(8),
				Scores: catalog.Scores{catalog.Reliability: 7}},
			{EquipmentID: "E03", VendorID: "V01", Brand: "Concept2", AllInPrice: 900, Overall: float64Ptr(5)},
		},
	)
	require.NoError(t, err)
	return c
}

func mustReduce(t *testing.T, cat *catalog.Catalog, st State, ev Event) State {
	t.Helper()
	next, err := Reduce(cat, st, ev)
	require.NoError(t, err, ev.EventType())
	return next
}

func TestNewState(t *testing.T) {
	cat := testCatalog(t)
	st := New(cat)

	assert.Equal(t, scoring.HighestOverall, st.Scenario)
	assert.False(t, st.CustomWeights())
	assert.Equal(t, scoring.DefaultWeights(), st.WeightInput)
	assert.Equal(t, scoring.Selection{"E01": "V01", "E02": "V02", "E03": "V01"}, st.Selection)
	assert.Equal(t, scoring.QuantityPlan{"E01": 2, "E02": 1, "E03": 1}, st.Quantities)
	assert.Equal(t, uint64(0), st.Revision)
}

func TestChangeScenario(t *testing.T) {
	cat := testCatalog(t)
	st := New(cat)

	next := mustReduce(t, cat, st, ChangeScenario{Scenario: scoring.MostReliable})
	assert.Equal(t, scoring.Selection{"E01": "V02", "E02": "V02", "E03": "V01"}, next.Selection)
	assert.Equal(t, uint64(1), next.Revision)
	assert.Equal(t, scoring.Selection{"E01": "V01", "E02": "V02", "E03": "V01"}, st.Selection, "input state untouched")

	next = mustReduce(t, cat, next, ChangeScenario{Scenario: scoring.SelectVendor, VendorID: "V02"})
	assert.Equal(t, "V02", next.VendorID)
	assert.Equal(t, scoring.Selection{"E01": "V02", "E02": "V02"}, next.Selection)

	next = mustReduce(t, cat, next, ChangeScenario{Scenario: scoring.LowestPrice, VendorID: "V02"})
	assert.Empty(t, next.VendorID, "vendor only kept for explicit vendor scenarios")
}

func TestChangeScenarioErrorsKeepState(t *testing.T) {
	cat := testCatalog(t)
	st := New(cat)

	got, err := Reduce(cat, st, ChangeScenario{Scenario: "fastestDelivery"})
	assert.ErrorIs(t, err, scoring.ErrUnknownScenario)
	assert.Equal(t, st, got)

	got, err = Reduce(cat, st, ChangeScenario{Scenario: scoring.SelectVendor, VendorID: "V77"})
	assert.ErrorIs(t, err, scoring.ErrUnknownVendor)
	assert.Equal(t, st, got)
}

func TestQuantitiesAcrossScenarioSwitches(t *testing.T) {
	cat := testCatalog(t)
	st := New(cat)

	st = mustReduce(t, cat, st, SetQuantity{EquipmentID: "E02", Quantity: 0})
	st = mustReduce(t, cat, st, ChangeScenario{Scenario: scoring.LowestPrice})
	assert.Equal(t, 0, st.Quantities["E02"], "criterion scenarios keep quantities")

	st = mustReduce(t, cat, st, ChangeScenario{Scenario: scoring.Custom})
	assert.Equal(t, cat.DefaultQuantities(), map[string]int(st.Quantities), "entering custom resets quantities")
}

func TestCustomRoundTripClearsSelection(t *testing.T) {
	cat := testCatalog(t)
	st := New(cat)

	st = mustReduce(t, cat, st, ChangeScenario{Scenario: scoring.Custom})
	assert.Empty(t, st.Selection)
	st = mustReduce(t, cat, st, ToggleVendor{EquipmentID: "E01", VendorID: "V02"})
	st = mustReduce(t, cat, st, ToggleVendor{EquipmentID: "E03", VendorID: "V01"})
	require.Len(t, st.Selection, 2)

	st = mustReduce(t, cat, st, ChangeScenario{Scenario: scoring.MostReliable})
	st = mustReduce(t, cat, st, ChangeScenario{Scenario: scoring.Custom})
	assert.Empty(t, st.Selection, "manual choices are not restored")
}

func TestToggleVendor(t *testing.T) {
	cat := testCatalog(t)
	st := mustReduce(t, cat, New(cat), ChangeScenario{Scenario: scoring.Custom})

	st = mustReduce(t, cat, st, ToggleVendor{EquipmentID: "E01", VendorID: "V01"})
	assert.Equal(t, scoring.Selection{"E01": "V01"}, st.Selection)

	t.Run("different vendor conflicts", func(t *testing.T) {
		got, err := Reduce(cat, st, ToggleVendor{EquipmentID: "E01", VendorID: "V02"})
		assert.ErrorIs(t, err, ErrSelectionConflict)
		assert.Equal(t, st, got)
		assert.Equal(t, "V01", got.Selection["E01"], "prior assignment untouched")
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := Reduce(cat, st, ToggleVendor{EquipmentID: "E03", VendorID: "V02"})
		assert.ErrorIs(t, err, ErrNoProduct)
	})

	t.Run("unknown equipment", func(t *testing.T) {
		_, err := Reduce(cat, st, ToggleVendor{EquipmentID: "E42", VendorID: "V01"})
		assert.ErrorIs(t, err, ErrUnknownEquipment)
	})

	t.Run("same vendor unassigns", func(t *testing.T) {
		got := mustReduce(t, cat, st, ToggleVendor{EquipmentID: "E01", VendorID: "V01"})
		assert.Empty(t, got.Selection)
	})

	t.Run("only in custom mode", func(t *testing.T) {
		_, err := Reduce(cat, New(cat), ToggleVendor{EquipmentID: "E01", VendorID: "V01"})
		assert.ErrorIs(t, err, ErrNotFreeForm)
	})
}

func TestClearSelection(t *testing.T) {
	cat := testCatalog(t)
	st := mustReduce(t, cat, New(cat), ChangeScenario{Scenario: scoring.Custom})
	st = mustReduce(t, cat, st, ToggleVendor{EquipmentID: "E01", VendorID: "V01"})
	st = mustReduce(t, cat, st, ToggleVendor{EquipmentID: "E02", VendorID: "V02"})

	one := mustReduce(t, cat, st, ClearSelection{EquipmentID: "E01"})
	assert.Equal(t, scoring.Selection{"E02": "V02"}, one.Selection)

	// clearing makes room for a different vendor
	one = mustReduce(t, cat, one, ToggleVendor{EquipmentID: "E01", VendorID: "V02"})
	assert.Equal(t, "V02", one.Selection["E01"])

	all := mustReduce(t, cat, st, ClearSelection{})
	assert.Empty(t, all.Selection)

	_, err := Reduce(cat, New(cat), ClearSelection{})
	assert.ErrorIs(t, err, ErrNotFreeForm)
}

func TestApplyWeights(t *testing.T) {
	cat := testCatalog(t)
	st := New(cat)

	var reliability scoring.WeightVector
	reliability[catalog.Reliability] = 100

	next := mustReduce(t, cat, st, ApplyWeights{Vector: reliability})
	assert.True(t, next.CustomWeights())
	assert.Equal(t, reliability, next.WeightInput)
	assert.Equal(t, "V02", next.Selection["E01"], "overall now follows reliability")

	t.Run("invalid vector rejected with total", func(t *testing.T) {
		bad := scoring.DefaultWeights()
		bad[catalog.Reliability] = 21
		got, err := Reduce(cat, next, ApplyWeights{Vector: bad})
		require.Error(t, err)

		var iwe *scoring.InvalidWeightsError
		require.True(t, errors.As(err, &iwe))
		assert.Equal(t, 99, iwe.Total)
		assert.Equal(t, next, got)
	})

	t.Run("reset restores precomputed scores", func(t *testing.T) {
		got := mustReduce(t, cat, next, ResetWeights{})
		assert.False(t, got.CustomWeights())
		assert.Equal(t, scoring.DefaultWeights(), got.WeightInput)
		assert.Equal(t, "V01", got.Selection["E01"])
	})

	t.Run("custom selection survives weight changes", func(t *testing.T) {
		custom := mustReduce(t, cat, st, ChangeScenario{Scenario: scoring.Custom})
		custom = mustReduce(t, cat, custom, ToggleVendor{EquipmentID: "E02", VendorID: "V01"})
		got := mustReduce(t, cat, custom, ApplyWeights{Vector: reliability})
		assert.Equal(t, scoring.Selection{"E02": "V01"}, got.Selection)
	})
}

func TestSetQuantity(t *testing.T) {
	cat := testCatalog(t)
	st := New(cat)

	next := mustReduce(t, cat, st, SetQuantity{EquipmentID: "E03", Quantity: 12})
	assert.Equal(t, 12, next.Quantities["E03"])
	assert.Equal(t, 1, st.Quantities["E03"])

	_, err := Reduce(cat, st, SetQuantity{EquipmentID: "E03", Quantity: -1})
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = Reduce(cat, st, SetQuantity{EquipmentID: "E09", Quantity: 1})
	assert.ErrorIs(t, err, ErrUnknownEquipment)
}

func TestSummarize(t *testing.T) {
	cat := testCatalog(t)
	st := New(cat)

	sum := Summarize(cat, st)
	require.Len(t, sum.Rows, 3)
	assert.Equal(t, 3, sum.SelectedCount)
	// E01: 2 × 1000, E02: 1 × 450, E03: 1 × 900
	assert.Equal(t, 3350.0, sum.TotalCost)
	assert.InDelta(t, (9.0+8.0+5.0)/3, sum.AverageScore, 1e-9)
	assert.Equal(t, "Life", sum.Rows[0].Brand)
	assert.Equal(t, "Alpha", sum.Rows[0].VendorName)

	require.Len(t, sum.Vendors, 2)
	assert.InDelta(t, (9.0+6.0+5.0)/3, sum.Vendors[0].AverageScore, 1e-9)
	assert.InDelta(t, (7.0+8.0)/3, sum.Vendors[1].AverageScore, 1e-9)
	assert.True(t, sum.Vendors[0].Highest)
	assert.False(t, sum.Vendors[1].Highest)
	assert.Equal(t, 2000.0+500+900, sum.Vendors[0].TotalCost)
}

func TestSummarizeCustomFiltersVendorCost(t *testing.T) {
	cat := testCatalog(t)
	st := mustReduce(t, cat, New(cat), ChangeScenario{Scenario: scoring.Custom})
	st = mustReduce(t, cat, st, ToggleVendor{EquipmentID: "E02", VendorID: "V02"})

	sum := Summarize(cat, st)
	assert.Equal(t, 1, sum.SelectedCount)
	assert.Equal(t, 450.0, sum.TotalCost)
	assert.False(t, sum.Rows[0].Selected)
	assert.Equal(t, 0.0, sum.Rows[0].Cost)

	// only E02 has a selection, so vendor totals only count E02
	assert.Equal(t, 500.0, sum.Vendors[0].TotalCost)
	assert.Equal(t, 450.0, sum.Vendors[1].TotalCost)
}

func TestSummarizeEmptySelection(t *testing.T) {
	cat := testCatalog(t)
	st := mustReduce(t, cat, New(cat), ChangeScenario{Scenario: scoring.Custom})

	sum := Summarize(cat, st)
	assert.Equal(t, 0, sum.SelectedCount)
	assert.Equal(t, 0.0, sum.AverageScore)
	assert.Equal(t, 0.0, sum.Vendors[0].TotalCost)
}

func TestSnapshotRoundTrip(t *testing.T) {
	cat := testCatalog(t)
	st := New(cat)

	var reliability scoring.WeightVector
	reliability[catalog.Reliability] = 100
	st = mustReduce(t, cat, st, ApplyWeights{Vector: reliability})
	st = mustReduce(t, cat, st, SetQuantity{EquipmentID: "E02", Quantity: 4})

	data, err := json.Marshal(st.ToSnapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	back, err := FromSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, st.Scenario, back.Scenario)
	assert.Equal(t, st.Selection, back.Selection)
	assert.Equal(t, st.Quantities, back.Quantities)
	assert.Equal(t, st.Revision, back.Revision)
	assert.Equal(t, st.Weights.Vector(), back.Weights.Vector())
	assert.Equal(t, Summarize(cat, st), Summarize(cat, back))
}

func TestFromSnapshotRejectsInvalidWeights(t *testing.T) {
	snap := New(testCatalog(t)).ToSnapshot()
	snap.CustomWeights = map[string]int{"S01": 50}

	_, err := FromSnapshot(snap)
	assert.ErrorIs(t, err, scoring.ErrInvalidWeights)

	snap.CustomWeights = nil
	snap.Scenario = "bogus"
	_, err = FromSnapshot(snap)
	assert.ErrorIs(t, err, scoring.ErrUnknownScenario)
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Event
	}{
		{"change scenario", `{"type":"change_scenario","scenario":"selectVendor","vendor_id":"V02"}`,
			ChangeScenario{Scenario: scoring.SelectVendor, VendorID: "V02"}},
		{"reset", `{"type":"reset_weights"}`, ResetWeights{}},
		{"toggle", `{"type":"toggle_vendor","equipment_id":"E01","vendor_id":"V01"}`,
			ToggleVendor{EquipmentID: "E01", VendorID: "V01"}},
		{"clear", `{"type":"clear_selection"}`, ClearSelection{}},
		{"quantity", `{"type":"set_quantity","equipment_id":"E01","quantity":3}`,
			SetQuantity{EquipmentID: "E01", Quantity: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEvent([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("apply weights", func(t *testing.T) {
		got, err := DecodeEvent([]byte(`{"type":"apply_weights","weights":{"S01":"60","S04":"40","S05":""}}`))
		require.NoError(t, err)
		aw, ok := got.(ApplyWeights)
		require.True(t, ok)
		assert.Equal(t, 60, aw.Vector[catalog.Reliability])
		assert.Equal(t, 40, aw.Vector[catalog.Price])
		assert.Equal(t, 100, aw.Vector.Sum())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := DecodeEvent([]byte(`{"type":"teleport"}`))
		assert.ErrorIs(t, err, ErrUnknownEvent)

		_, err = DecodeEvent([]byte(`{"type":"apply_weights","weights":{"S01":"x"}}`))
		assert.ErrorIs(t, err, scoring.ErrWeightInput)

		_, err = DecodeEvent([]byte(`not json`))
		assert.ErrorIs(t, err, ErrMalformedEvent)

		_, err = DecodeEvent([]byte(`{"type":"set_quantity","quantity":"two"}`))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})
}
