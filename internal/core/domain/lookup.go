package domain

// References holds externally resolved links for a substance.
// Each is optional; an unavailable source leaves its field empty.
type References struct {
	// Wiki is the TripSit wiki page.
	Wiki string `json:"wiki,omitempty"`

	// PsychonautWiki is the PsychonautWiki page.
	PsychonautWiki string `json:"psychonautwiki,omitempty"`

	// Erowid is the Erowid index entry.
	Erowid *ErowidEntry `json:"erowid,omitempty"`

	// Effects maps an effect name to its PsychonautWiki effect index page.
	Effects map[string]string `json:"effects,omitempty"`
}

// AnnotatedSubstance is a substance ready for presentation.
type AnnotatedSubstance struct {
	// Substance is a private copy; its summary carries annotation markup and
	// its sources carry clickable references.
	Substance *Substance `json:"substance"`

	// Group is the resolved interaction group. Nil when no rule matched.
	Group *InteractionGroup `json:"group,omitempty"`

	// Safety holds combination warnings. Nil when Group is nil.
	Safety *SafetyBuckets `json:"safety,omitempty"`

	References References `json:"references"`

	// PropertyOrder is the display order of property keys.
	PropertyOrder []string `json:"property_order"`
}

// LookupResult is the outcome of resolving an identifier.
// Exactly one of Substance or RedirectTo is set.
type LookupResult struct {
	Substance *AnnotatedSubstance `json:"substance,omitempty"`

	// RedirectTo is the canonical name when the identifier matched an alias.
	RedirectTo string `json:"redirect_to,omitempty"`
}

// IsRedirect reports whether the identifier resolved through an alias.
func (r *LookupResult) IsRedirect() bool {
	return r != nil && r.RedirectTo != ""
}

// StatusReport lists substances missing structured fields.
type StatusReport struct {
	MissingDose         []Substance `json:"missing_dose"`
	MissingOnset        []Substance `json:"missing_onset"`
	MissingDuration     []Substance `json:"missing_duration"`
	MissingAfterEffects []Substance `json:"missing_aftereffects"`
}

// MissingSources reports which citation groups a common substance lacks.
type MissingSources struct {
	Substance Substance `json:"substance"`
	Missing   []string  `json:"missing"`
}
