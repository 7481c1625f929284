// Package catalog holds the agency's service catalog and the identifier
// lookup used by service pages and quote pre-fill links.
package catalog

// Service categories
const (
	CategoryWebApp     = "Web & App Development"
	CategoryBranding   = "Branding & Design"
	CategoryMarketing  = "Digital Marketing"
	CategoryContent    = "Content & Media"
	CategoryConsulting = "Consulting & Support"
)

// Service is one entry of the public services catalog
type Service struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	Summary       string   `json:"summary"`
	Paths         []string `json:"paths"`
	SubServices   []string `json:"sub_services"`
	Keywords      []string `json:"-"`
	StartingPrice int      `json:"starting_price"`
	DeliveryWeeks int      `json:"delivery_weeks"`
}

var services = []Service{
	{
		ID:            "web-development",
		Title:         "Website Development",
		Category:      CategoryWebApp,
		Summary:       "Fast, accessible marketing sites and web platforms built to convert.",
		Paths:         []string{"/services/web-development", "/services/websites", "/web"},
		SubServices:   []string{"Landing Pages", "Corporate Websites", "CMS Integration", "Web Applications"},
		Keywords:      []string{"website", "web"},
		StartingPrice: 1500,
		DeliveryWeeks: 4,
	},
	{
		ID:            "mobile-app-development",
		Title:         "Mobile App Development",
		Category:      CategoryWebApp,
		Summary:       "Native and cross-platform apps for iOS and Android.",
		Paths:         []string{"/services/mobile-apps", "/services/app-development"},
		SubServices:   []string{"iOS Apps", "Android Apps", "Cross-Platform Apps", "App Store Launch"},
		Keywords:      []string{"app", "apps", "mobile", "ios", "android"},
		StartingPrice: 5000,
		DeliveryWeeks: 10,
	},
	{
		ID:            "ecommerce-development",
		Title:         "E-commerce Solutions",
		Category:      CategoryWebApp,
		Summary:       "Online stores with payments, inventory and fulfilment wired in.",
		Paths:         []string{"/services/ecommerce", "/services/online-store"},
		SubServices:   []string{"Shopify Stores", "WooCommerce", "Payment Integration", "Product Catalog Setup"},
		Keywords:      []string{"shop", "store", "e-commerce"},
		StartingPrice: 3000,
		DeliveryWeeks: 6,
	},
	{
		ID:            "ui-ux-design",
		Title:         "UI/UX Design",
		Category:      CategoryBranding,
		Summary:       "Research-led interface design, wireframes and interactive prototypes.",
		Paths:         []string{"/services/ui-ux", "/services/product-design"},
		SubServices:   []string{"User Research", "Wireframing", "Prototyping", "Design Systems"},
		Keywords:      []string{"ux", "ui", "interface"},
		StartingPrice: 1200,
		DeliveryWeeks: 3,
	},
	{
		ID:            "logo-design",
		Title:         "Logo Design",
		Category:      CategoryBranding,
		Summary:       "Distinctive marks delivered with every file format you will need.",
		Paths:         []string{"/services/logo-design", "/services/logo-branding"},
		SubServices:   []string{"Logo Concepts", "Logo Refresh", "Icon Design"},
		Keywords:      []string{"logo", "logos", "logotype", "mark"},
		StartingPrice: 299,
		DeliveryWeeks: 1,
	},
	{
		ID:            "brand-identity",
		Title:         "Brand Identity",
		Category:      CategoryBranding,
		Summary:       "Complete visual identity systems and guidelines.",
		Paths:         []string{"/services/branding", "/services/brand-identity"},
		SubServices:   []string{"Brand Strategy", "Visual Identity", "Brand Guidelines", "Print Collateral"},
		Keywords:      []string{"brand", "branding", "identity"},
		StartingPrice: 1800,
		DeliveryWeeks: 4,
	},
	{
		ID:            "seo",
		Title:         "Search Engine Optimization",
		Category:      CategoryMarketing,
		Summary:       "Technical, on-page and content SEO that compounds over time.",
		Paths:         []string{"/services/seo", "/services/search-engine-optimization"},
		SubServices:   []string{"Technical SEO", "Keyword Research", "Link Building", "Local SEO"},
		Keywords:      []string{"seo", "search"},
		StartingPrice: 500,
		DeliveryWeeks: 12,
	},
	{
		ID:            "social-media-marketing",
		Title:         "Social Media Marketing",
		Category:      CategoryMarketing,
		Summary:       "Channel strategy, content calendars and community management.",
		Paths:         []string{"/services/social-media"},
		SubServices:   []string{"Content Calendars", "Community Management", "Influencer Outreach"},
		Keywords:      []string{"social", "instagram", "tiktok"},
		StartingPrice: 600,
		DeliveryWeeks: 4,
	},
	{
		ID:            "ppc-advertising",
		Title:         "PPC Advertising",
		Category:      CategoryMarketing,
		Summary:       "Paid search and social campaigns managed against your CAC targets.",
		Paths:         []string{"/services/ppc", "/services/paid-ads"},
		SubServices:   []string{"Google Ads", "Meta Ads", "Retargeting", "Conversion Tracking"},
		Keywords:      []string{"ads", "ppc", "adwords"},
		StartingPrice: 750,
		DeliveryWeeks: 2,
	},
	{
		ID:            "content-marketing",
		Title:         "Content Marketing",
		Category:      CategoryContent,
		Summary:       "Articles, newsletters and lead magnets written for your audience.",
		Paths:         []string{"/services/content", "/services/copywriting"},
		SubServices:   []string{"Blog Writing", "Copywriting", "Email Newsletters", "Whitepapers"},
		Keywords:      []string{"copy", "blog", "writing"},
		StartingPrice: 400,
		DeliveryWeeks: 2,
	},
	{
		ID:            "video-production",
		Title:         "Video Production",
		Category:      CategoryContent,
		Summary:       "Explainers, product videos and motion graphics.",
		Paths:         []string{"/services/video"},
		SubServices:   []string{"Explainer Videos", "Motion Graphics", "Product Demos", "Video Editing"},
		Keywords:      []string{"video", "animation", "motion"},
		StartingPrice: 1000,
		DeliveryWeeks: 3,
	},
	{
		ID:            "it-consulting",
		Title:         "IT Consulting & Maintenance",
		Category:      CategoryConsulting,
		Summary:       "Hosting, security reviews and ongoing maintenance plans.",
		Paths:         []string{"/services/consulting", "/services/maintenance"},
		SubServices:   []string{"Website Maintenance", "Hosting Management", "Security Audits", "Technology Strategy"},
		Keywords:      []string{"hosting", "support", "maintenance"},
		StartingPrice: 250,
		DeliveryWeeks: 1,
	},
}

var categories = []string{
	CategoryWebApp,
	CategoryBranding,
	CategoryMarketing,
	CategoryContent,
	CategoryConsulting,
}

// All returns every catalog entry in display order
func All() []Service {
	out := make([]Service, len(services))
	for i, s := range services {
		out[i] = s.clone()
	}
	return out
}

// Categories returns the category labels in display order
func Categories() []string {
	return append([]string(nil), categories...)
}

// ByCategory returns the services of one category. The label is matched
// case-insensitively.
func ByCategory(category string) []Service {
	label, ok := MatchCategory(category)
	if !ok {
		return nil
	}
	var out []Service
	for _, s := range services {
		if s.Category == label {
			out = append(out, s.clone())
		}
	}
	return out
}

func (s Service) clone() Service {
	s.Paths = append([]string(nil), s.Paths...)
	s.SubServices = append([]string(nil), s.SubServices...)
	s.Keywords = append([]string(nil), s.Keywords...)
	return s
}
