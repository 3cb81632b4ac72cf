package categorize

// Built-in matching tables. Entries are ordered: within a strategy the first
// match wins, so more specific entries come before generic ones.

type merchantEntry struct {
	Name     string
	Category string
}

// defaultMerchants maps vendor-name substrings to categories.
func defaultMerchants() []merchantEntry {
	return []merchantEntry{
		// Home improvement & repairs
		{"home depot", "repairs"},
		{"homedepot", "repairs"},
		{"lowes", "repairs"},
		{"lowe's", "repairs"},
		{"ace hardware", "repairs"},
		{"menards", "repairs"},
		{"true value", "repairs"},

		// Insurance
		{"state farm", "insurance"},
		{"allstate", "insurance"},
		{"geico", "insurance"},
		{"progressive", "insurance"},
		{"farmers insurance", "insurance"},
		{"liberty mutual", "insurance"},
		{"nationwide", "insurance"},
		{"usaa", "insurance"},

		// Mortgage & financing
		{"rocket mortgage", "mortgage_interest"},
		{"quicken loans", "mortgage_interest"},
		{"wells fargo mortgage", "mortgage_interest"},
		{"chase mortgage", "mortgage_interest"},
		{"bank of america mortgage", "mortgage_interest"},
		{"us bank mortgage", "mortgage_interest"},

		// Utilities
		{"electric", "utilities"},
		{"electricity", "utilities"},
		{"power company", "utilities"},
		{"gas company", "utilities"},
		{"natural gas", "utilities"},
		{"water", "utilities"},
		{"sewer", "utilities"},
		{"aep", "utilities"},
		{"duke energy", "utilities"},
		{"national grid", "utilities"},
		{"pg&e", "utilities"},
		{"pge", "utilities"},

		// Repairs & maintenance trades
		{"plumbing", "repairs"},
		{"plumber", "repairs"},
		{"hvac", "repairs"},
		{"heating", "repairs"},
		{"cooling", "repairs"},
		{"roto-rooter", "repairs"},
		{"roto rooter", "repairs"},
		{"mr handyman", "repairs"},
		{"handyman", "repairs"},
		{"appliance repair", "repairs"},
		{"locksmith", "repairs"},

		// Legal & professional
		{"attorney", "legal"},
		{"law office", "legal"},
		{"law firm", "legal"},
		{"legal services", "legal"},

		// Property management
		{"property management", "management_fees"},
		{"property manager", "management_fees"},
		{"pm company", "management_fees"},

		// Cleaning
		{"maid", "cleaning"},
		{"cleaning service", "cleaning"},
		{"molly maid", "cleaning"},
		{"merry maids", "cleaning"},
		{"janitorial", "cleaning"},

		// Landscaping & lawn care
		{"landscape", "landscaping"},
		{"landscaping", "landscaping"},
		{"tree service", "landscaping"},
		{"lawn care", "landscaping"},
		{"trugreen", "landscaping"},
		{"scotts", "landscaping"},

		// Pest control
		{"pest control", "pest_control"},
		{"exterminator", "pest_control"},
		{"terminix", "pest_control"},
		{"orkin", "pest_control"},

		// HOA
		{"hoa", "hoa"},
		{"homeowners association", "hoa"},
		{"condo association", "hoa"},

		// Taxes
		{"tax", "taxes"},
		{"property tax", "taxes"},
		{"county treasurer", "taxes"},
		{"tax collector", "taxes"},

		// Advertising
		{"zillow", "advertising"},
		{"trulia", "advertising"},
		{"craigslist", "advertising"},
		{"apartments.com", "advertising"},
		{"facebook ads", "advertising"},

		// Supplies
		{"supply", "supplies"},
		{"supplies", "supplies"},
		{"hardware", "supplies"},
	}
}

type patternEntry struct {
	Pattern     string
	Category    string
	Confidence  float64
	Description string
}

// defaultPatterns are regexes for shapes a substring table cannot express.
func defaultPatterns() []patternEntry {
	return []patternEntry{
		// Mortgage
		{`mortgage.*\d{4,}`, "mortgage_interest", 0.90, "Mortgage with account number"},
		{`\bpayment\s*\d+\s*of\s*\d+`, "mortgage_interest", 0.85, "Payment X of Y pattern"},
		{`loan.*payment`, "mortgage_interest", 0.80, "Loan payment mention"},

		// Insurance
		{`insurance.*policy`, "insurance", 0.90, "Insurance policy reference"},
		{`policy\s*#?\s*\d+`, "insurance", 0.85, "Policy number pattern"},

		// Repairs
		{`repair.*invoice`, "repairs", 0.85, "Repair invoice"},
		{`service.*call`, "repairs", 0.70, "Service call"},
		{`emergency.*repair`, "repairs", 0.90, "Emergency repair"},

		// Taxes
		{`property\s*tax`, "taxes", 0.95, "Property tax explicit"},
		{`real\s*estate\s*tax`, "taxes", 0.95, "Real estate tax"},

		// Utilities
		{`electric.*bill`, "utilities", 0.90, "Electric bill"},
		{`water.*bill`, "utilities", 0.90, "Water bill"},
		{`gas.*bill`, "utilities", 0.90, "Gas bill"},

		// HOA
		{`hoa.*dues`, "hoa", 0.95, "HOA dues"},
		{`association.*fee`, "hoa", 0.85, "Association fee"},
	}
}

type keywordEntry struct {
	Keyword    string
	Category   string
	Confidence float64
}

// defaultKeywords is the low-confidence single-word fallback table.
func defaultKeywords() []keywordEntry {
	return []keywordEntry{
		{"insurance", "insurance", 0.70},
		{"mortgage", "mortgage_interest", 0.70},
		{"repair", "repairs", 0.65},
		{"fix", "repairs", 0.60},
		{"utility", "utilities", 0.65},
		{"utilities", "utilities", 0.70},
		{"tax", "taxes", 0.75},
		{"taxes", "taxes", 0.75},
		{"cleaning", "cleaning", 0.75},
		{"landscape", "landscaping", 0.70},
		{"pest", "pest_control", 0.75},
		{"hoa", "hoa", 0.80},
		{"management", "management_fees", 0.70},
		{"legal", "legal", 0.75},
		{"advertising", "advertising", 0.75},
	}
}
