package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionsOrderAndLabels(t *testing.T) {
	var labels []string
	for _, s := range Sections() {
		labels = append(labels, s.String())
	}
	assert.Equal(t, []string{
		"Overview",
		"Crime Locations",
		"Borough & Precincts",
		"Time-Based Trends",
		"Complaint Explorer",
		"Missing Data",
	}, labels)
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		in   string
		want Section
		ok   bool
	}{
		{"overview", SectionOverview, true},
		{"Crime Locations", SectionCrimeLocations, true},
		{"borough & precincts", SectionBoroughPrecincts, true},
		{" time-trends ", SectionTimeTrends, true},
		{"complaint-explorer", SectionExplorer, true},
		{"MISSING DATA", SectionMissingData, true},
		{"Weather", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseSection(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestSectionPathAndInvalid(t *testing.T) {
	assert.Equal(t, "/sections/borough-precincts", SectionBoroughPrecincts.Path())
	assert.Equal(t, "Section(42)", Section(42).String())
	assert.Equal(t, "", Section(-1).Slug())
}
