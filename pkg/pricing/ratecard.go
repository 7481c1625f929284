package pricing

// Plan is one column of the public rate card
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Price        int      `json:"price"`
	Billing      string   `json:"billing"`
	Features     []string `json:"features"`
	Recommended  bool     `json:"recommended"`
	QuotePrefill string   `json:"quote_prefill"`
}

const (
	BillingProject = "project"
	BillingMonthly = "monthly"
)

var rateCard = []Plan{
	{ID: "web-starter", Name: "Starter", Category: "Web & App Development", Price: 1500, Billing: BillingProject,
		Features: []string{"Up to 5 pages", "Responsive layout", "Contact form", "Basic SEO setup"}, QuotePrefill: "1000-5000"},
	{ID: "web-growth", Name: "Growth", Category: "Web & App Development", Price: 4500, Billing: BillingProject, Recommended: true,
		Features: []string{"Up to 15 pages", "CMS integration", "Analytics", "Performance tuning", "3 months support"}, QuotePrefill: "1000-5000"},
	{ID: "web-enterprise", Name: "Enterprise", Category: "Web & App Development", Price: 12000, Billing: BillingProject,
		Features: []string{"Custom web application", "Third-party integrations", "Dedicated project manager", "12 months support"}, QuotePrefill: "10000-25000"},

	{ID: "brand-starter", Name: "Starter", Category: "Branding & Design", Price: 499, Billing: BillingProject,
		Features: []string{"Logo design (3 concepts)", "2 revision rounds", "Vector source files"}, QuotePrefill: "under-1000"},
	{ID: "brand-growth", Name: "Growth", Category: "Branding & Design", Price: 1800, Billing: BillingProject, Recommended: true,
		Features: []string{"Logo suite", "Colour palette and typography", "Brand guidelines", "Social media kit"}, QuotePrefill: "1000-5000"},
	{ID: "brand-enterprise", Name: "Enterprise", Category: "Branding & Design", Price: 6000, Billing: BillingProject,
		Features: []string{"Full brand identity", "Brand strategy workshop", "Packaging and print collateral"}, QuotePrefill: "5000-10000"},

	{ID: "marketing-starter", Name: "Starter", Category: "Digital Marketing", Price: 600, Billing: BillingMonthly,
		Features: []string{"2 social channels", "12 posts per month", "Monthly report"}, QuotePrefill: "under-1000"},
	{ID: "marketing-growth", Name: "Growth", Category: "Digital Marketing", Price: 1500, Billing: BillingMonthly, Recommended: true,
		Features: []string{"SEO retainer", "Paid ads management", "4 social channels", "Bi-weekly reporting"}, QuotePrefill: "1000-5000"},
	{ID: "marketing-enterprise", Name: "Enterprise", Category: "Digital Marketing", Price: 4000, Billing: BillingMonthly,
		Features: []string{"Omnichannel campaigns", "Marketing automation", "Dedicated strategist"}, QuotePrefill: "1000-5000"},
}

// RateCard returns the published plans, optionally restricted to one category
func RateCard(category string) []Plan {
	out := make([]Plan, 0, len(rateCard))
	for _, p := range rateCard {
		if category != "" && p.Category != category {
			continue
		}
		plan := p
		plan.Features = append([]string(nil), p.Features...)
		out = append(out, plan)
	}
	return out
}
