package ingest

// FieldKind drives cell coercion in the normalizer.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumeric
	KindPercent
	KindCurrency
	KindDate
)

// CanonicalColumn is one fixed attribute of a normalized campaign row.
// Registry order is authoritative: when one CSV header could satisfy two
// canonical slots, the earlier slot wins.
type CanonicalColumn struct {
	Name     string
	Kind     FieldKind
	Required bool
	// Synonyms are accepted alternate header names, highest priority first.
	Synonyms []string
}

// CanonicalColumns is the full registry used for validation, mapping,
// normalization, the downloadable template and exports.
var CanonicalColumns = []CanonicalColumn{
	{Name: "Campaign name", Kind: KindText, Required: true, Synonyms: []string{"Campaign", "Campaign Name", "campaign_name"}},
	{Name: "Ad set name", Kind: KindText, Required: true, Synonyms: []string{"Ad Set", "Adset name", "Ad group name", "adset_name"}},
	{Name: "Day", Kind: KindDate, Required: true, Synonyms: []string{"Date", "Reporting starts", "Report Date", "day"}},
	{Name: "Objective", Kind: KindText, Required: true, Synonyms: []string{"Campaign objective", "Goal", "objective"}},
	{Name: "Impressions", Kind: KindNumeric, Required: true, Synonyms: []string{"Impr.", "Impr", "impressions"}},
	{Name: "Link clicks", Kind: KindNumeric, Required: true, Synonyms: []string{"Clicks", "Link Clicks", "clicks", "link_clicks"}},
	{Name: "Amount spent (INR)", Kind: KindCurrency, Required: true, Synonyms: []string{"Spend", "Ad Spend", "Cost", "Total Spend", "Amount spent", "amount_spent"}},
	{Name: "Results", Kind: KindNumeric, Required: true, Synonyms: []string{"Conversions", "Total results", "results"}},
	{Name: "Cost per result", Kind: KindCurrency, Required: false, Synonyms: []string{"Cost per conversion", "CPR", "cost_per_result"}},
	{Name: "CTR (%)", Kind: KindPercent, Required: false, Synonyms: []string{"CTR", "Click-through rate", "ctr"}},
	{Name: "CPC", Kind: KindCurrency, Required: false, Synonyms: []string{"Cost per click", "Avg. CPC", "cpc"}},
	{Name: "Purchases", Kind: KindNumeric, Required: false, Synonyms: []string{"Website purchases", "Orders", "purchases"}},
	{Name: "Purchases conversion value", Kind: KindCurrency, Required: false, Synonyms: []string{"Purchase value", "Conversion value", "Revenue", "purchase_value"}},
	{Name: "Purchase ROAS", Kind: KindNumeric, Required: false, Synonyms: []string{"ROAS", "Return on ad spend", "roas"}},
	{Name: "Reach", Kind: KindNumeric, Required: false, Synonyms: []string{"Unique reach", "reach"}},
}

// RequiredColumns returns the names of the required subset, in registry order.
func RequiredColumns() []string {
	names := make([]string, 0, len(CanonicalColumns))
	for _, col := range CanonicalColumns {
		if col.Required {
			names = append(names, col.Name)
		}
	}
	return names
}

func columnByName(name string) (CanonicalColumn, bool) {
	for _, col := range CanonicalColumns {
		if col.Name == name {
			return col, true
		}
	}
	return CanonicalColumn{}, false
}
