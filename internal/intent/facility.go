package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// facilityAlias maps a surface form to its canonical facility category.
type facilityAlias struct {
	alias    string
	category string
}

// facilityAliases is ordered so that longer, more specific surface forms are
// matched before their prefixes.
var facilityAliases = []facilityAlias{
	{"洗手间", "洗手间"}, {"厕所", "洗手间"}, {"卫生间", "洗手间"}, {"toilet", "洗手间"}, {"wc", "洗手间"},
	{"休息处", "休息点"}, {"休息点", "休息点"}, {"休息", "休息点"}, {"rest", "休息点"},
	{"餐厅", "餐厅"}, {"餐馆", "餐厅"}, {"吃饭", "餐厅"}, {"restaurant", "餐厅"}, {"food", "餐厅"},
	{"商场", "商场"}, {"购物", "商场"}, {"mall", "商场"}, {"shop", "商场"},
	{"医院", "医院"}, {"诊所", "医院"}, {"医疗点", "医院"}, {"医疗", "医院"}, {"hospital", "医院"}, {"clinic", "医院"}, {"急救", "医院"},
}

// defaultFacilityCategory is assumed when the text names no facility type.
const defaultFacilityCategory = "餐厅"

// defaultFacilityRadiusM is the search radius in meters when none is given.
const defaultFacilityRadiusM = 1000

var (
	facilityNearbyPatterns []*regexp.Regexp
	facilityAliasRE        *regexp.Regexp
)

func init() {
	aliases := make([]string, len(facilityAliases))
	for i, a := range facilityAliases {
		aliases[i] = regexp.QuoteMeta(a.alias)
	}
	group := strings.Join(aliases, "|")
	facilityAliasRE = regexp.MustCompile(`(?i)(` + group + `)`)
	facilityNearbyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:附近|周边|nearby|around)(?:的|有|)\s*(` + group + `)`),
		regexp.MustCompile(`(?i)(?:最近的|nearest|closest)\s*(` + group + `)`),
		regexp.MustCompile(`(?i)(` + group + `)\s*(?:在哪里|在哪|where)`),
	}
}

var (
	facilityLocationRE = regexp.MustCompile(`(?i)(?:在|at|in)\s*(.+?)\s*(?:附近|周边|nearby|around)`)
	facilityRadiusRE   = regexp.MustCompile(`(?i)(?:半径|radius|范围)\s*(\d+)\s*(?:米|m|公里|km|千米)`)
	facilityKmRE       = regexp.MustCompile(`(?i)公里|km|千米`)
)

// FacilityDetector recognizes nearby facility lookups such as
// "附近有洗手间吗" or "最近的医院在哪".
type FacilityDetector struct{}

// NewFacilityDetector returns a nearby facility query detector.
func NewFacilityDetector() *FacilityDetector { return &FacilityDetector{} }

var _ Detector = (*FacilityDetector)(nil)

func (*FacilityDetector) Name() string { return "nearby_facility" }

func (*FacilityDetector) Detect(text string) bool {
	for _, re := range facilityNearbyPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractParams returns the facility category, the search center and the
// radius in meters. Radii given in kilometers are converted to meters.
func (*FacilityDetector) ExtractParams(text string) Params {
	params := Params{}

	params["facility_type"] = defaultFacilityCategory
	if m := facilityAliasRE.FindStringSubmatch(text); m != nil {
		params["facility_type"] = canonicalFacility(m[1])
	}

	params["location"] = defaultOrigin
	if m := facilityLocationRE.FindStringSubmatch(text); m != nil {
		params["location"] = strings.TrimSpace(m[1])
	}

	params["radius"] = defaultFacilityRadiusM
	if m := facilityRadiusRE.FindStringSubmatch(text); m != nil {
		if radius, err := strconv.Atoi(m[1]); err == nil {
			if facilityKmRE.MatchString(text) {
				radius *= 1000
			}
			params["radius"] = radius
		}
	}
	return params
}

func canonicalFacility(alias string) string {
	lower := strings.ToLower(alias)
	for _, a := range facilityAliases {
		if a.alias == lower {
			return a.category
		}
	}
	return defaultFacilityCategory
}
