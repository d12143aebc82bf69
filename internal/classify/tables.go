package classify

// Tables maps a category slug to its keyword-weight table: lowercase
// token (possibly multi-word) to a positive relevance weight. Tables
// are treated as immutable once handed to a Categorizer; Reload swaps
// the whole set.
type Tables map[string]map[string]float64

// DefaultTables is the built-in taxonomy used to seed the category
// store on first start. Weights favour terms that identify the
// category on their own; generic terms get lower weight.
func DefaultTables() Tables {
	return Tables{
		"economy": {
			"economy": 2, "economic": 2, "gdp": 2, "inflation": 2,
			"recession": 2, "federal reserve": 2, "fed": 1,
			"central bank": 2, "monetary policy": 2, "fiscal policy": 2,
			"budget": 1, "deficit": 1, "surplus": 1, "employment": 1,
			"unemployment": 2, "jobs report": 2, "labor market": 2,
			"wages": 1, "consumer spending": 2, "retail sales": 1,
			"housing market": 2, "mortgage": 1, "interest rate": 2,
			"treasury": 1, "bond yield": 2, "rate cut": 2, "rate hike": 2,
			"cpi": 2, "ppi": 2, "growth": 1,
		},
		"market": {
			"market": 1, "stock": 2, "stocks": 2, "shares": 1,
			"equity": 1, "equities": 2, "commodity": 2, "commodities": 2,
			"oil": 1, "gold": 1, "silver": 1, "copper": 1, "trading": 2,
			"traders": 1, "wall street": 2, "nasdaq": 2, "dow jones": 2,
			"futures": 1, "options": 1, "derivatives": 2, "forex": 2,
			"currency": 1, "exchange rate": 2, "bitcoin": 2, "crypto": 2,
			"hedge fund": 2, "etf": 2, "index": 1, "bull market": 2,
			"bear market": 2, "rally": 2, "selloff": 2, "ipo": 2,
			"earnings": 1, "dividend": 2, "yield": 1, "investor": 1,
			"investment": 1, "portfolio": 1, "securities": 1,
		},
		"health": {
			"health": 2, "healthcare": 2, "medical": 2, "medicine": 2,
			"hospital": 2, "doctor": 1, "patient": 1, "disease": 2,
			"treatment": 1, "vaccine": 2, "pharmaceutical": 2, "drug": 1,
			"fda": 2, "clinical trial": 2, "therapy": 1, "cancer": 2,
			"diabetes": 2, "mental health": 2, "pandemic": 2,
			"epidemic": 2, "virus": 1, "covid": 2, "public health": 2,
			"medicare": 2, "medicaid": 2, "biotech": 2, "wellness": 1,
			"nutrition": 1, "insurance": 1,
		},
		"technology": {
			"technology": 2, "tech": 1, "software": 2, "hardware": 2,
			"computer": 1, "ai": 2, "artificial intelligence": 2,
			"machine learning": 2, "cloud": 1, "cybersecurity": 2,
			"cyber": 1, "hack": 1, "digital": 1, "internet": 1, "app": 1,
			"smartphone": 2, "apple": 1, "google": 1, "microsoft": 1,
			"amazon": 1, "meta": 1, "startup": 2, "silicon valley": 2,
			"semiconductor": 2, "chip": 1, "processor": 1, "5g": 2,
			"blockchain": 2, "automation": 1, "robot": 1, "quantum": 2,
			"virtual reality": 2, "nvidia": 2, "openai": 2, "chatgpt": 2,
			"llm": 2, "gpu": 2,
		},
		"industry": {
			"industry": 2, "industrial": 2, "manufacturing": 2,
			"factory": 2, "production": 1, "automotive": 2, "auto": 1,
			"vehicle": 1, "electric vehicle": 2, "aerospace": 2,
			"airline": 2, "aviation": 2, "shipping": 1, "logistics": 2,
			"supply chain": 2, "retail": 1, "consumer goods": 2,
			"construction": 2, "real estate": 2, "energy": 1,
			"renewable": 2, "solar": 1, "wind": 1, "mining": 2,
			"steel": 2, "chemical": 1, "agriculture": 2, "food": 1,
			"beverage": 1, "textile": 2, "apparel": 1, "luxury": 1,
			"entertainment": 1, "media": 1,
		},
	}
}
