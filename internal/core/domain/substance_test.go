package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstance_DisplayName(t *testing.T) {
	assert.Equal(t, "LSD", (&Substance{Name: "lsd", PrettyName: "LSD"}).DisplayName())
	assert.Equal(t, "dmt", (&Substance{Name: "dmt"}).DisplayName())
}

func TestSubstance_HasCategory(t *testing.T) {
	s := &Substance{Categories: []string{"psychedelic", "Common"}}
	assert.True(t, s.HasCategory("common"))
	assert.True(t, s.HasCategory("psychedelic"))
	assert.False(t, s.HasCategory("stimulant"))
}

func TestSubstance_Clone(t *testing.T) {
	orig := &Substance{
		Name:          "mdma",
		Categories:    []string{"empathogen"},
		Properties:    Properties{PropertySummary: "An empathogen."},
		Sources:       map[string][]string{"dose": {"http://example.org"}},
		FormattedDose: &Formatted{Unit: "mg", Routes: map[string]json.RawMessage{"Oral": json.RawMessage(`"80-120"`)}},
	}

	c := orig.Clone()
	c.Properties[PropertySummary] = "changed"
	c.Sources["dose"][0] = "changed"
	c.Categories[0] = "changed"
	c.FormattedDose.Routes["Oral"] = []byte(`"0"`)

	summary, ok := orig.Properties.Summary()
	require.True(t, ok)
	assert.Equal(t, "An empathogen.", summary)
	assert.Equal(t, "http://example.org", orig.Sources["dose"][0])
	assert.Equal(t, "empathogen", orig.Categories[0])
	assert.Equal(t, `"80-120"`, string(orig.FormattedDose.Routes["Oral"]))
}

func TestProperties_Summary(t *testing.T) {
	tests := []struct {
		name  string
		props Properties
		want  string
		ok    bool
	}{
		{"string summary", Properties{PropertySummary: "text"}, "text", true},
		{"missing summary", Properties{}, "", false},
		{"non-string summary", Properties{PropertySummary: 42}, "", false},
		{"nil bag", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.props.Summary()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProperties_Keys(t *testing.T) {
	p := Properties{"onset": 1, "dose": 2, "avoid": 3}
	assert.Equal(t, []string{"avoid", "dose", "onset"}, p.Keys())
}

func TestAliasIndex_Resolve(t *testing.T) {
	idx := AliasIndex{"molly": "mdma"}

	name, ok := idx.Resolve("MOLLY")
	assert.True(t, ok)
	assert.Equal(t, "mdma", name)

	_, ok = idx.Resolve("ecstasy")
	assert.False(t, ok)
}

func TestSubstanceSet(t *testing.T) {
	set := &SubstanceSet{ByName: map[string]*Substance{
		"lsd": {Name: "lsd"},
		"dmt": {Name: "dmt"},
	}}

	sub, ok := set.Get("LSD")
	require.True(t, ok)
	assert.Equal(t, "lsd", sub.Name)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"dmt", "lsd"}, set.Names())

	var empty *SubstanceSet
	_, ok = empty.Get("lsd")
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Names())
}

func TestSortByDisplayName(t *testing.T) {
	subs := []Substance{
		{Name: "b-sub", PrettyName: "Zeta"},
		{Name: "a-sub", PrettyName: "alpha"},
		{Name: "c-sub"},
		{Name: "a-dup", PrettyName: "Zeta"},
	}

	SortByDisplayName(subs)

	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"a-sub", "c-sub", "a-dup", "b-sub"}, names)
}
