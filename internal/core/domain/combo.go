package domain

// ComboStatus classifies the risk of combining two substances.
type ComboStatus string

// Recognised combination statuses as published by the combo dataset.
const (
	ComboLowRiskSynergy    ComboStatus = "Low Risk & Synergy"
	ComboLowRiskDecrease   ComboStatus = "Low Risk & Decrease"
	ComboLowRiskNoSynergy  ComboStatus = "Low Risk & No Synergy"
	ComboDangerous         ComboStatus = "Dangerous"
	ComboCaution           ComboStatus = "Caution"
	ComboUnsafe            ComboStatus = "Unsafe"
	ComboSerotoninSyndrome ComboStatus = "Serotonin Syndrome"
)

// IsValid returns true if the status is one of the recognised values.
func (s ComboStatus) IsValid() bool {
	switch s {
	case ComboLowRiskSynergy, ComboLowRiskDecrease, ComboLowRiskNoSynergy,
		ComboDangerous, ComboCaution, ComboUnsafe, ComboSerotoninSyndrome:
		return true
	default:
		return false
	}
}

// ComboEntry is the risk classification of one (group, partner) pair.
type ComboEntry struct {
	Status ComboStatus `json:"status"`
	Note   string      `json:"note,omitempty"`
}

// Combos maps an interaction group to partner names to their risk entries.
type Combos map[string]map[string]ComboEntry

// InteractionGroup is a named bucket under which combination entries are organised.
type InteractionGroup struct {
	Key        string `json:"key"`
	PrettyName string `json:"pretty_name"`
	Wiki       string `json:"wiki,omitempty"`
}

// Interaction group keys used by the classification rules.
const (
	GroupDOx             = "dox"
	Group2Cx             = "2c-x"
	Group5MeOxxT         = "5-meo-xxt"
	GroupBenzodiazepines = "benzodiazepines"
	GroupOpioids         = "opioids"
	GroupAmphetamines    = "amphetamines"
)

var knownGroups = map[string]InteractionGroup{
	"dox":             {Key: "dox", PrettyName: "DOx", Wiki: "https://wiki.tripsit.me/wiki/DOx"},
	"nbomes":          {Key: "nbomes", PrettyName: "NBOMes", Wiki: "https://wiki.tripsit.me/wiki/NBOMes"},
	"2c-x":            {Key: "2c-x", PrettyName: "2C-x", Wiki: "https://wiki.tripsit.me/wiki/2C-X"},
	"2c-t-x":          {Key: "2c-t-x", PrettyName: "2C-T-x", Wiki: "https://wiki.tripsit.me/wiki/2C-X"},
	"5-meo-xxt":       {Key: "5-meo-xxt", PrettyName: "5-MeO-xxT", Wiki: "https://wiki.tripsit.me/wiki/5-MeO-DMT"},
	"amphetamines":    {Key: "amphetamines", PrettyName: "Amphetamines", Wiki: "https://wiki.tripsit.me/wiki/Amphetamine"},
	"benzodiazepines": {Key: "benzodiazepines", PrettyName: "Benzodiazepines", Wiki: "https://wiki.tripsit.me/wiki/Benzodiazepines"},
	"maois":           {Key: "maois", PrettyName: "MAOIs", Wiki: "https://wiki.tripsit.me/wiki/Antidepressants#MAOIs"},
	"ssris":           {Key: "ssris", PrettyName: "SSRIs", Wiki: "https://wiki.tripsit.me/wiki/Antidepressants#SSRIs"},
	"opioids":         {Key: "opioids", PrettyName: "Opioids", Wiki: "https://wiki.tripsit.me/wiki/Opioids"},
	"ghb/gbl":         {Key: "ghb/gbl", PrettyName: "GHB/GBL", Wiki: "https://wiki.tripsit.me/wiki/GHB"},
}

// LookupGroup returns the catalogue entry for a named interaction group.
// Substance-specific groups (a combo key equal to a substance name) are not catalogued.
func LookupGroup(key string) (InteractionGroup, bool) {
	g, ok := knownGroups[key]
	return g, ok
}

// SafetyEntry is one partner in a safety bucket.
type SafetyEntry struct {
	// Name is the raw partner key from the combo dataset.
	Name string `json:"name"`

	// PrettyName is the resolved display name.
	PrettyName string `json:"pretty_name"`

	// Wiki is set when the partner is a named interaction group.
	Wiki string `json:"wiki,omitempty"`

	Note string `json:"note,omitempty"`
}

// SafetyBuckets holds a substance's combination warnings grouped by status.
type SafetyBuckets struct {
	LowRiskSynergy    []SafetyEntry `json:"lowinc"`
	LowRiskDecrease   []SafetyEntry `json:"lowdec"`
	LowRiskNoSynergy  []SafetyEntry `json:"lowno"`
	Dangerous         []SafetyEntry `json:"dangerous"`
	Caution           []SafetyEntry `json:"caution"`
	Unsafe            []SafetyEntry `json:"unsafe"`
	SerotoninSyndrome []SafetyEntry `json:"ss"`
}

// NewSafetyBuckets returns buckets with every list allocated, so all seven
// appear in encoded output even when empty.
func NewSafetyBuckets() *SafetyBuckets {
	return &SafetyBuckets{
		LowRiskSynergy:    []SafetyEntry{},
		LowRiskDecrease:   []SafetyEntry{},
		LowRiskNoSynergy:  []SafetyEntry{},
		Dangerous:         []SafetyEntry{},
		Caution:           []SafetyEntry{},
		Unsafe:            []SafetyEntry{},
		SerotoninSyndrome: []SafetyEntry{},
	}
}

// Bucket returns the list for a status, or nil for unrecognised statuses.
func (b *SafetyBuckets) Bucket(status ComboStatus) *[]SafetyEntry {
	switch status {
	case ComboLowRiskSynergy:
		return &b.LowRiskSynergy
	case ComboLowRiskDecrease:
		return &b.LowRiskDecrease
	case ComboLowRiskNoSynergy:
		return &b.LowRiskNoSynergy
	case ComboDangerous:
		return &b.Dangerous
	case ComboCaution:
		return &b.Caution
	case ComboUnsafe:
		return &b.Unsafe
	case ComboSerotoninSyndrome:
		return &b.SerotoninSyndrome
	default:
		return nil
	}
}

// Len returns the total number of entries across all buckets.
func (b *SafetyBuckets) Len() int {
	if b == nil {
		return 0
	}
	return len(b.LowRiskSynergy) + len(b.LowRiskDecrease) + len(b.LowRiskNoSynergy) +
		len(b.Dangerous) + len(b.Caution) + len(b.Unsafe) + len(b.SerotoninSyndrome)
}
