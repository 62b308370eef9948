// Package sections maps text positions on a resume page to section labels.
package sections

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Key identifies a resume section.
type Key string

const (
	Person         Key = "person"
	Education      Key = "education"
	Experiences    Key = "experiences"
	Skills         Key = "skills"
	Projects       Key = "projects"
	Awards         Key = "awards"
	Leadership     Key = "leadership"
	Certifications Key = "certifications"
	Languages      Key = "languages"
	Publications   Key = "publications"
	Summary        Key = "summary"
	Coursework     Key = "coursework"
)

const (
	// MaxHeadingLen is the longest fragment still considered a heading.
	MaxHeadingLen = 60
	// DedupeTolerance is the vertical distance under which two detections of
	// the same key count as one.
	DedupeTolerance = 20.0
)

type pattern struct {
	key Key
	re  *regexp.Regexp
}

// Order matters: the first match wins.
var patterns = []pattern{
	{Education, regexp.MustCompile(`(?i)\beducation\b`)},
	{Experiences, regexp.MustCompile(`(?i)\b(experience|work\s+experience|significant\s+roles|professional\s+experience)\b`)},
	{Skills, regexp.MustCompile(`(?i)\b(skills|technical\s+skills|skills\s*[&]\s*interests)\b`)},
	{Projects, regexp.MustCompile(`(?i)\b(projects?|selected\s+projects)\b`)},
	{Awards, regexp.MustCompile(`(?i)\b(awards?|honors|scholastic\s+achievements)\b`)},
	{Leadership, regexp.MustCompile(`(?i)\b(leadership|positions?\s+of\s+responsibility)\b`)},
	{Certifications, regexp.MustCompile(`(?i)\b(certifications?|global\s+certifications?)\b`)},
	{Languages, regexp.MustCompile(`(?i)\blanguages?\b`)},
	{Publications, regexp.MustCompile(`(?i)\b(publications?|academic\s+publications?)\b`)},
	{Summary, regexp.MustCompile(`(?i)\b(summary|personal\s+profile|objective)\b`)},
	{Coursework, regexp.MustCompile(`(?i)\b(coursework|key\s+courses)\b`)},
}

// Fragment is a piece of extracted text. Y is in document space, with the
// origin at the bottom of the page.
type Fragment struct {
	Text string  `json:"text"`
	Y    float64 `json:"y"`
}

// Region is a labeled vertical band of a page. YStart is the upper edge.
type Region struct {
	Key    Key     `json:"key"`
	YStart float64 `json:"y_start"`
	YEnd   float64 `json:"y_end"`
	Page   int     `json:"page"`
}

type heading struct {
	key Key
	y   float64
}

// Classify returns the section key a short text names, if any.
func Classify(text string) (Key, bool) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxHeadingLen {
		return "", false
	}
	for _, p := range patterns {
		if p.re.MatchString(text) {
			return p.key, true
		}
	}
	return "", false
}

// Detect partitions one page into regions. It returns nil when the page has
// no recognizable heading.
func Detect(fragments []Fragment, pageHeight float64, page int) []Region {
	var found []heading
	for _, f := range fragments {
		key, ok := Classify(f.Text)
		if !ok || seen(found, key, f.Y) {
			continue
		}
		found = append(found, heading{key: key, y: f.Y})
	}
	if len(found) == 0 {
		return nil
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].y > found[j].y })

	regions := make([]Region, 0, len(found)+1)
	regions = append(regions, Region{Key: Person, YStart: pageHeight, YEnd: found[0].y, Page: page})
	for i, h := range found {
		end := 0.0
		if i+1 < len(found) {
			end = found[i+1].y
		}
		regions = append(regions, Region{Key: h.key, YStart: h.y, YEnd: end, Page: page})
	}
	return regions
}

func seen(found []heading, key Key, y float64) bool {
	for _, h := range found {
		if h.key == key && math.Abs(h.y-y) < DedupeTolerance {
			return true
		}
	}
	return false
}

// FindAt returns the key of the region on page that contains y. Both edges
// are inclusive; the first matching region wins.
func FindAt(regions []Region, y float64, page int) (Key, bool) {
	for _, r := range regions {
		if r.Page == page && r.YEnd <= y && y <= r.YStart {
			return r.Key, true
		}
	}
	return "", false
}
