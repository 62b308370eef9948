package models

// TemplateInfo describes one LaTeX resume template offered by the backend.
type TemplateInfo struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Engine            string   `json:"engine"`
	SupportedSections []string `json:"supported_sections"`
}

// CompileRequest asks the backend to render ResumeData with a template.
type CompileRequest struct {
	TemplateID string     `json:"template_id"`
	ResumeData ResumeData `json:"resume_data"`
}

// ResumeData is the resume editor document. Section keys match the keys the
// PDF section detector emits, so a click on the preview selects a section.
type ResumeData struct {
	Person          PersonData           `json:"person"`
	Education       []EducationEntry     `json:"education"`
	Experiences     []ExperienceEntry    `json:"experiences"`
	Skills          SkillsData           `json:"skills"`
	Projects        []ProjectEntry       `json:"projects"`
	Awards          []AwardEntry         `json:"awards"`
	Leadership      []LeadershipEntry    `json:"leadership"`
	Certifications  []CertificationEntry `json:"certifications"`
	Languages       []LanguageEntry      `json:"languages"`
	Publications    []PublicationEntry   `json:"publications"`
	Coursework      CourseworkData       `json:"coursework"`
	References      []ReferenceEntry     `json:"references"`
	Summary         []string             `json:"summary"`
	Miscellaneous   []MiscellaneousEntry `json:"miscellaneous"`
	Extracurricular []string             `json:"extracurricular"`
}

// NewResumeData returns an empty document whose lists encode as [] rather
// than null.
func NewResumeData() ResumeData {
	return ResumeData{
		Education:       []EducationEntry{},
		Experiences:     []ExperienceEntry{},
		Skills:          SkillsData{Categories: []SkillCategory{}, Flat: []string{}},
		Projects:        []ProjectEntry{},
		Awards:          []AwardEntry{},
		Leadership:      []LeadershipEntry{},
		Certifications:  []CertificationEntry{},
		Languages:       []LanguageEntry{},
		Publications:    []PublicationEntry{},
		Coursework:      CourseworkData{Postgraduate: []string{}, Undergraduate: []string{}},
		References:      []ReferenceEntry{},
		Summary:         []string{},
		Miscellaneous:   []MiscellaneousEntry{},
		Extracurricular: []string{},
	}
}

type PersonData struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Location       string `json:"location"`
	Website        string `json:"website"`
	WebsiteDisplay string `json:"website_display"`
	LinkedIn       string `json:"linkedin"`
	GitHub         string `json:"github"`
	Tagline        string `json:"tagline"`
	Profile        string `json:"profile"`
	Nationality    string `json:"nationality"`
}

type EducationEntry struct {
	Degree      string   `json:"degree"`
	Institution string   `json:"institution"`
	Dates       string   `json:"dates"`
	Location    string   `json:"location"`
	GPA         string   `json:"gpa"`
	Details     []string `json:"details"`
}

type ExperienceEntry struct {
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Dates    string   `json:"dates"`
	Location string   `json:"location"`
	Keywords string   `json:"keywords"`
	Bullets  []string `json:"bullets"`
}

type SkillCategory struct {
	Name  string `json:"name"`
	Items string `json:"items"`
}

type SkillsData struct {
	Categories []SkillCategory `json:"categories"`
	Flat       []string        `json:"flat"`
}

type ProjectEntry struct {
	Title   string   `json:"title"`
	Context string   `json:"context"`
	Dates   string   `json:"dates"`
	URL     string   `json:"url"`
	Bullets []string `json:"bullets"`
}

type AwardEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type LeadershipEntry struct {
	Title        string   `json:"title"`
	Organization string   `json:"organization"`
	Dates        string   `json:"dates"`
	Bullets      []string `json:"bullets"`
}

type CertificationEntry struct {
	Name        string `json:"name"`
	Institution string `json:"institution"`
	URL         string `json:"url"`
}

type LanguageEntry struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type PublicationEntry struct {
	Title   string `json:"title"`
	Venue   string `json:"venue"`
	Authors string `json:"authors"`
}

type CourseworkData struct {
	Postgraduate  []string `json:"postgraduate"`
	Undergraduate []string `json:"undergraduate"`
}

type ReferenceEntry struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Institution string `json:"institution"`
	Email       string `json:"email"`
}

type MiscellaneousEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
