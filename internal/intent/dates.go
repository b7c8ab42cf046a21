package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateRange is an inclusive travel date span in YYYY-MM-DD form.
type DateRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

const dateLayout = "2006-01-02"

var (
	// Matches explicit ranges like "2026-05-01至2026-05-03" and
	// "2026年5月1日到2026年5月3日".
	explicitRangeRE = regexp.MustCompile(`(\d{4}[-/年]\d{1,2}[-/月]\d{1,2}日?)\s*(?:至|到|-)\s*(\d{4}[-/年]\d{1,2}[-/月]\d{1,2}日?)`)

	// Matches trip lengths like "5天", "3 days".
	tripDaysRE = regexp.MustCompile(`(\d+)\s*(?:天|days|日)`)

	dateNormalizer = strings.NewReplacer("年", "-", "月", "-", "日", "", "/", "-")
)

// defaultTripSpanDays is the trip length assumed when the text names
// neither dates nor a duration.
const defaultTripSpanDays = 3

// extractDateRange resolves travel dates from free text with three tiers of
// fallback: an explicit start/end range, a trip length in days anchored at
// today, and finally a fallbackDays trip starting today.
func extractDateRange(text string, now func() time.Time, fallbackDays int) DateRange {
	if m := explicitRangeRE.FindStringSubmatch(text); m != nil {
		return DateRange{
			Start: dateNormalizer.Replace(m[1]),
			End:   dateNormalizer.Replace(m[2]),
		}
	}

	today := now()
	if m := tripDaysRE.FindStringSubmatch(text); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil && days > 0 {
			return DateRange{
				Start: today.Format(dateLayout),
				End:   today.AddDate(0, 0, days-1).Format(dateLayout),
			}
		}
	}

	if fallbackDays < 1 {
		fallbackDays = defaultTripSpanDays
	}
	return DateRange{
		Start: today.Format(dateLayout),
		End:   today.AddDate(0, 0, fallbackDays-1).Format(dateLayout),
	}
}

// styleEntry maps a canonical style name to the keywords that imply it.
// Entries are ordered: the first style whose keyword appears wins.
type styleEntry struct {
	style    string
	keywords []string
}

// matchStyle returns the first style whose keyword occurs in the lowercased
// text, or "" when none matches.
func matchStyle(text string, entries []styleEntry) string {
	lower := strings.ToLower(text)
	for _, e := range entries {
		for _, kw := range e.keywords {
			if strings.Contains(lower, kw) {
				return e.style
			}
		}
	}
	return ""
}

// tripStyles classifies the overall character of a trip for itinerary
// planning and profile collection.
var tripStyles = []styleEntry{
	{"文化", []string{"文化", "历史", "古迹", "博物馆", "culture", "history", "museum"}},
	{"美食", []string{"美食", "吃", "餐厅", "food", "cuisine", "eat", "restaurant"}},
	{"购物", []string{"购物", "买", "商场", "shopping", "shop", "mall"}},
	{"自然", []string{"自然", "风景", "景色", "公园", "nature", "scenery", "park"}},
	{"冒险", []string{"冒险", "刺激", "极限", "adventure", "exciting", "extreme"}},
	{"放松", []string{"放松", "休闲", "spa", "relax", "leisure"}},
	{"家庭", []string{"家庭", "孩子", "亲子", "family", "kid", "child"}},
}

// dietEntries maps canonical dietary restrictions to their keyword forms.
var dietEntries = []styleEntry{
	{"素食", []string{"素食", "素", "vegetarian", "vegan"}},
	{"无麸质", []string{"无麸质", "gluten-free"}},
	{"无乳糖", []string{"无乳糖", "lactose-free"}},
	{"清真", []string{"清真", "halal"}},
	{"无坚果", []string{"无坚果", "nut-free", "坚果过敏"}},
}

// matchDietRestrictions returns every dietary restriction whose keyword
// occurs in the text, in canonical order.
func matchDietRestrictions(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, e := range dietEntries {
		for _, kw := range e.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, e.style)
				break
			}
		}
	}
	return out
}

var budgetRE = regexp.MustCompile(`(?i)(?:预算|budget)\s*(\d+)\s*(?:元|块|yuan|rmb|cny)`)

// matchBudget extracts a numeric budget in yuan, returning 0 when absent.
func matchBudget(text string) int {
	m := budgetRE.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
