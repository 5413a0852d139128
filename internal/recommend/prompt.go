package recommend

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

const defaultFacility = "a condominium fitness center"

var printer = message.NewPrinter(language.English)

// commentaryFields is the order and heading of commentary codes in a prompt.
var commentaryFields = []struct{ code, heading string }{
	{"C02", "Build Quality Notes"},
	{"C03", "Weight/Specs"},
	{"C04", "Stack/Feature Info"},
	{"C05", "Additional Specs"},
	{"C06", "Warranty Details"},
	{"C07", "Durability Assessment"},
	{"C08", "Reliability Notes"},
	{"C09", "Ease of Use"},
	{"C10", "Service/Parts Availability"},
	{"C11", "Aesthetics"},
	{"C14", "Additional Notes"},
	{"C15", "Dimensions"},
}

// RankedProduct is a product with the overall score it is presented with.
type RankedProduct struct {
	catalog.Product
	Overall float64
	Labels  [catalog.NumWeighted]string
}

type PromptInput struct {
	// Facility describes where the equipment goes. Empty uses a default.
	Facility string
	// Title names the equipment under comparison, e.g. "Treadmill".
	Title    string
	Weights  scoring.WeightVector
	Labels   [catalog.NumWeighted]string
	Products []RankedProduct
}

// ForEquipment compares every quote for one equipment type, best first.
func ForEquipment(cat *catalog.Catalog, equipmentID string, w *scoring.Weights) (PromptInput, error) {
	e, ok := cat.EquipmentType(equipmentID)
	if !ok {
		return PromptInput{}, fmt.Errorf("equipment %q: %w", equipmentID, catalog.ErrUnknownReference)
	}
	in := PromptInput{Title: e.Name, Weights: w.Vector(), Labels: labelsFor(cat, e.ID)}
	for _, p := range cat.ProductsFor(e.ID) {
		in.Products = append(in.Products, rank(cat, p, w))
	}
	if len(in.Products) == 0 {
		return PromptInput{}, ErrNoProducts
	}
	slices.SortStableFunc(in.Products, func(a, b RankedProduct) int {
		return cmp.Compare(b.Overall, a.Overall)
	})
	return in, nil
}

// ForSelection compares the products of the current selection.
func ForSelection(cat *catalog.Catalog, sel scoring.Selection, w *scoring.Weights) (PromptInput, error) {
	in := PromptInput{Title: "selected", Weights: w.Vector()}
	for i, c := range catalog.WeightedCriteria() {
		in.Labels[i] = c.Label()
	}
	for _, e := range cat.Equipment() {
		vendorID, ok := sel.Vendor(e.ID)
		if !ok {
			continue
		}
		if p, ok := cat.Product(e.ID, vendorID); ok {
			in.Products = append(in.Products, rank(cat, p, w))
		}
	}
	if len(in.Products) == 0 {
		return PromptInput{}, ErrNoProducts
	}
	return in, nil
}

func rank(cat *catalog.Catalog, p catalog.Product, w *scoring.Weights) RankedProduct {
	return RankedProduct{Product: p, Overall: scoring.OverallScore(p, w), Labels: labelsFor(cat, p.EquipmentID)}
}

func labelsFor(cat *catalog.Catalog, equipmentID string) [catalog.NumWeighted]string {
	var out [catalog.NumWeighted]string
	for i, c := range catalog.WeightedCriteria() {
		out[i] = cat.Label(equipmentID, c)
	}
	return out
}

// BuildPrompt renders the analyst instruction. The model is asked to open its
// answer with the recommended vendor name and a colon.
func BuildPrompt(in PromptInput) string {
	facility := in.Facility
	if facility == "" {
		facility = defaultFacility
	}

	var weights []string
	for i, c := range catalog.WeightedCriteria() {
		weights = append(weights, fmt.Sprintf("%s: %d%%", in.Labels[i], in.Weights.Get(c)))
	}

	details := make([]string, len(in.Products))
	for i, p := range in.Products {
		details[i] = productDetails(p)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a procurement analyst specializing in commercial gym equipment for %s. ", facility)
	fmt.Fprintf(&b, "Analyze the following %s equipment options and provide a recommendation.\n\n", in.Title)
	b.WriteString("CRITERIA WEIGHTS (Total 100%):\n")
	b.WriteString(strings.Join(weights, ", "))
	if top := heaviest(in, 4); top != "" {
		fmt.Fprintf(&b, "\n\nThe most heavily weighted criteria are %s. These are critical for a shared gym environment.", top)
	}
	b.WriteString("\n\nEQUIPMENT OPTIONS WITH DETAILED DATA:\n")
	b.WriteString(strings.Join(details, "\n\n---\n\n"))
	b.WriteString("\n\nPlease provide:\n")
	b.WriteString("1. Your top recommendation with a clear justification based on the scores AND the detailed commentary provided\n")
	b.WriteString("2. A comparison highlighting key trade-offs between the top 2-3 options, referencing specific details from the commentary\n")
	b.WriteString("3. Important considerations for a shared gym environment (durability for shared use, ease of maintenance, warranty coverage, service availability)\n\n")
	b.WriteString("Keep your response focused and actionable. Start with the recommended vendor name followed by a colon.")
	return b.String()
}

func productDetails(p RankedProduct) string {
	var scores []string
	for i, c := range catalog.WeightedCriteria() {
		v := "N/A"
		if s := p.Scores.Get(c); s != 0 {
			v = fmt.Sprintf("%.2f", s)
		}
		scores = append(scores, p.Labels[i]+": "+v)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "VENDOR: %s\n", p.VendorName)
	fmt.Fprintf(&b, "Brand: %s\n", p.Brand)
	fmt.Fprintf(&b, "Model: %s\n", p.Model)
	fmt.Fprintf(&b, "Overall Score: %.2f\n", p.Overall)
	fmt.Fprintf(&b, "Price: $%s\n", formatPrice(p.AllInPrice))
	fmt.Fprintf(&b, "Scores: %s\n", strings.Join(scores, ", "))

	var comments []string
	for _, f := range commentaryFields {
		if text := p.Commentary[f.code]; text != "" {
			comments = append(comments, f.heading+": "+text)
		}
	}
	if len(comments) > 0 {
		b.WriteString("\nDetailed Commentary:\n")
		b.WriteString(strings.Join(comments, "\n"))
	}
	if p.URL != "" {
		b.WriteString("\nProduct URL: " + p.URL)
	}
	return b.String()
}

// heaviest lists the n largest non-zero weights, ties in criterion order.
func heaviest(in PromptInput, n int) string {
	type entry struct {
		label  string
		weight int
	}
	var entries []entry
	for i, c := range catalog.WeightedCriteria() {
		if w := in.Weights.Get(c); w > 0 {
			entries = append(entries, entry{in.Labels[i], w})
		}
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return cmp.Compare(b.weight, a.weight) })

	var parts []string
	for _, e := range entries[:min(n, len(entries))] {
		parts = append(parts, fmt.Sprintf("%s (%d%%)", e.label, e.weight))
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
}

// formatPrice groups thousands and keeps cents only when there are any.
func formatPrice(v float64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	cents := int64(math.Round(v * 100))
	whole := sign + printer.Sprintf("%d", cents/100)
	if cents%100 == 0 {
		return whole
	}
	return whole + fmt.Sprintf(".%02d", cents%100)
}

var vendorPrefix = regexp.MustCompile(`^([^:]+):`)

// ExtractVendor reads the vendor name the model put before its first colon
// and matches it case-insensitively as a substring of the products' vendor
// names. The returned product is nil when nothing matches.
func ExtractVendor(text string, products []catalog.Product) (string, *catalog.Product) {
	m := vendorPrefix.FindStringSubmatch(text)
	if m == nil {
		return "", nil
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", nil
	}
	needle := strings.ToLower(name)
	for i := range products {
		if strings.Contains(strings.ToLower(products[i].VendorName), needle) {
			p := products[i]
			return name, &p
		}
	}
	return name, nil
}

// Plain returns the products without their ranking.
func (in PromptInput) Plain() []catalog.Product {
	out := make([]catalog.Product, len(in.Products))
	for i, p := range in.Products {
		out[i] = p.Product
	}
	return out
}
