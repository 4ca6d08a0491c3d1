package dashboard

import (
	"strconv"
	"strings"
)

// Section is one entry of the sidebar navigation.
type Section int

const (
	SectionOverview Section = iota
	SectionCrimeLocations
	SectionBoroughPrecincts
	SectionTimeTrends
	SectionExplorer
	SectionMissingData
	sectionCount
)

var sectionInfo = [sectionCount]struct {
	label string
	slug  string
}{
	SectionOverview:         {"Overview", "overview"},
	SectionCrimeLocations:   {"Crime Locations", "crime-locations"},
	SectionBoroughPrecincts: {"Borough & Precincts", "borough-precincts"},
	SectionTimeTrends:       {"Time-Based Trends", "time-trends"},
	SectionExplorer:         {"Complaint Explorer", "complaint-explorer"},
	SectionMissingData:      {"Missing Data", "missing-data"},
}

// Sections returns every section in sidebar order.
func Sections() []Section {
	out := make([]Section, 0, sectionCount)
	for s := Section(0); s < sectionCount; s++ {
		out = append(out, s)
	}
	return out
}

func (s Section) valid() bool { return s >= 0 && s < sectionCount }

// String returns the sidebar label.
func (s Section) String() string {
	if !s.valid() {
		return "Section(" + strconv.Itoa(int(s)) + ")"
	}
	return sectionInfo[s].label
}

// Slug returns the URL path segment of the section.
func (s Section) Slug() string {
	if !s.valid() {
		return ""
	}
	return sectionInfo[s].slug
}

// Path returns the dashboard URL of the section.
func (s Section) Path() string { return "/sections/" + s.Slug() }

// ParseSection resolves a slug or a sidebar label (case-insensitive).
func ParseSection(v string) (Section, bool) {
	v = strings.TrimSpace(v)
	for s := Section(0); s < sectionCount; s++ {
		if strings.EqualFold(v, sectionInfo[s].slug) || strings.EqualFold(v, sectionInfo[s].label) {
			return s, true
		}
	}
	return 0, false
}
