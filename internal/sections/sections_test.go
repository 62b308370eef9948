package sections

import (
	"strings"
	"testing"
)

func TestDetect_TwoHeadings(t *testing.T) {
	frags := []Fragment{
		{Text: "Jane Doe", Y: 760},
		{Text: "Skills", Y: 300},
		{Text: "Education", Y: 500},
		{Text: "BSc Computer Science, 2018", Y: 480},
	}
	got := Detect(frags, 800, 0)

	want := []Region{
		{Key: Person, YStart: 800, YEnd: 500},
		{Key: Education, YStart: 500, YEnd: 300},
		{Key: Skills, YStart: 300, YEnd: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("regions = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("region[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDetect_NoHeadings(t *testing.T) {
	got := Detect([]Fragment{{Text: "Jane Doe", Y: 700}, {Text: "", Y: 10}}, 800, 2)
	if len(got) != 0 {
		t.Errorf("regions = %+v, want none", got)
	}
}

func TestDetect_SkipsLongFragments(t *testing.T) {
	long := "Education " + strings.Repeat("x", MaxHeadingLen)
	got := Detect([]Fragment{{Text: long, Y: 500}}, 800, 0)
	if len(got) != 0 {
		t.Errorf("long fragment detected: %+v", got)
	}
}

func TestDetect_DedupesRepeatedHeading(t *testing.T) {
	frags := []Fragment{
		{Text: "EDUCATION", Y: 500},
		{Text: "Education", Y: 490},
		{Text: "Education", Y: 200},
	}
	got := Detect(frags, 800, 1)
	if len(got) != 3 {
		t.Fatalf("regions = %+v", got)
	}
	if got[1].YStart != 500 || got[2].YStart != 200 {
		t.Errorf("regions = %+v", got)
	}
	for _, r := range got {
		if r.Page != 1 {
			t.Errorf("page = %d, want 1", r.Page)
		}
	}
}

func TestClassify_TableOrder(t *testing.T) {
	cases := map[string]Key{
		"Work Experience":             Experiences,
		"Technical Skills":            Skills,
		"Skills & Interests":          Skills,
		"Selected Projects":           Projects,
		"Scholastic Achievements":     Awards,
		"Positions of Responsibility": Leadership,
		"Global Certifications":       Certifications,
		"Languages":                   Languages,
		"Academic Publications":       Publications,
		"Personal Profile":            Summary,
		"Key Courses":                 Coursework,
		"Education and Experience":    Education,
		"Relevant Coursework":         Coursework,
	}
	for in, want := range cases {
		got, ok := Classify(in)
		if !ok || got != want {
			t.Errorf("Classify(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := Classify("Experienced"); ok {
		t.Errorf("Classify matched a partial word")
	}
}

func TestFindAt(t *testing.T) {
	regions := Detect([]Fragment{{Text: "Education", Y: 500}, {Text: "Skills", Y: 300}}, 800, 0)

	cases := []struct {
		y    float64
		page int
		want Key
		ok   bool
	}{
		{650, 0, Person, true},
		{500, 0, Person, true},
		{400, 0, Education, true},
		{0, 0, Skills, true},
		{400, 1, "", false},
		{900, 0, "", false},
	}
	for _, tc := range cases {
		got, ok := FindAt(regions, tc.y, tc.page)
		if got != tc.want || ok != tc.ok {
			t.Errorf("FindAt(%v, %d) = %q, %v; want %q, %v", tc.y, tc.page, got, ok, tc.want, tc.ok)
		}
	}
}
