package recommendation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/student"
)

type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneWarm         Tone = "warm"
	ToneEnthusiastic Tone = "enthusiastic"
)

const (
	// an answer longer than this is spliced into the academic section
	academicDetailMinLen = 50
	// a leadership answer longer than this adds the leadership variant
	strongLeadershipMinLen = 50
	// a personal answer longer than this is preferred as the main story
	personalStoryMinLen = 100

	sectionSeparator = "\n\n"
)

// Variant is a (tone, focus areas) combination rendered into one letter.
type Variant struct {
	Tone  Tone
	Focus []Category
}

var (
	baseVariants = []Variant{
		{Tone: ToneFormal, Focus: []Category{CategoryAcademic, CategoryCharacter}},
		{Tone: ToneWarm, Focus: []Category{CategoryPersonal, CategorySocial, CategoryCharacter}},
		{Tone: ToneEnthusiastic, Focus: []Category{CategoryLeadership, CategoryExtracurricular, CategoryAcademic}},
	}
	leadershipVariant = Variant{Tone: ToneWarm, Focus: []Category{CategoryLeadership, CategorySocial, CategoryCharacter}}
)

type letterTemplate struct {
	opening func(studentName, collegeName string) string
	closing func(studentName string) string
}

var letterTemplates = map[Tone]letterTemplate{
	ToneFormal: {
		opening: func(s, c string) string {
			return fmt.Sprintf("Dear Admissions Committee at %[2]s,\n\n"+
				"I am writing to provide my strongest recommendation for %[1]s, who has been a student in my class. "+
				"It is my pleasure to recommend %[1]s for admission to your esteemed institution.", s, c)
		},
		closing: func(s string) string {
			return fmt.Sprintf("In conclusion, I recommend %[1]s without reservation. "+
				"%[1]s would be an excellent addition to your academic community and will undoubtedly contribute significantly to your institution.\n\n"+
				"Sincerely,", s)
		},
	},
	ToneWarm: {
		opening: func(s, c string) string {
			return fmt.Sprintf("Dear Admissions Officers at %[2]s,\n\n"+
				"It brings me great joy to write this letter of recommendation for %[1]s. "+
				"Having had the privilege of teaching %[1]s, I can confidently say that they are among the most remarkable students I have encountered in my teaching career.", s, c)
		},
		closing: func(s string) string {
			return fmt.Sprintf("I wholeheartedly endorse %[1]s's application to your institution. "+
				"They have the character, intellect, and drive to excel in your academic environment and beyond.\n\n"+
				"With warm regards,", s)
		},
	},
	ToneEnthusiastic: {
		opening: func(s, c string) string {
			return fmt.Sprintf("Dear %[2]s Admissions Team,\n\n"+
				"I am delighted to write this letter of recommendation for %[1]s! "+
				"In my years of teaching, few students have impressed me as much as %[1]s has. "+
				"I recommend %[1]s with tremendous enthusiasm.", s, c)
		},
		closing: func(s string) string {
			return fmt.Sprintf("%[1]s is exactly the kind of student who will thrive at your institution and make meaningful contributions to your community. "+
				"I give %[1]s my highest recommendation!\n\n"+
				"Best regards,", s)
		},
	},
}

var alignmentSentences = map[college.Type]string{
	college.TypeTechnical:   "Their analytical thinking and problem-solving abilities make them well-suited for your rigorous technical programs.",
	college.TypeLiberalArts: "Their intellectual curiosity and well-rounded perspective align perfectly with your liberal arts tradition.",
	college.TypeResearch:    "Their inquisitive nature and academic excellence position them well for your research-focused environment.",
	college.TypeBusiness:    "Their leadership potential and strategic thinking make them an ideal candidate for your business programs.",
}

const defaultAlignmentSentence = "Their academic excellence and strong character make them well-suited for your institutional values."

// CompositionInput is everything the composer reads.
// College.Characteristics is carried along but not used by any section.
type CompositionInput struct {
	Student student.Student
	College college.College
	Answers []Answer
}

// Draft is a composed letter before it gets an identity.
type Draft struct {
	Tone      Tone
	Focus     []Category
	Content   string
	WordCount int
}

// Compose renders one Draft per variant. The output only depends on in.
func Compose(in CompositionInput) []Draft {
	c := newComposer(in)
	variants := c.variants()

	drafts := make([]Draft, 0, len(variants))
	for _, v := range variants {
		drafts = append(drafts, c.compose(v))
	}
	return drafts
}

// Variants returns the variants Compose renders for answers.
func Variants(answers []Answer) []Variant {
	return newComposer(CompositionInput{Answers: answers}).variants()
}

type composer struct {
	in         CompositionInput
	byCategory map[Category][]Answer
}

func newComposer(in CompositionInput) *composer {
	byCat := make(map[Category][]Answer, len(Categories))
	for _, a := range in.Answers {
		if cat, ok := CategoryOf(a.QuestionID); ok {
			byCat[cat] = append(byCat[cat], a)
		}
	}
	return &composer{in: in, byCategory: byCat}
}

func (c *composer) variants() []Variant {
	variants := append([]Variant{}, baseVariants...)
	if c.hasStrongLeadership() {
		variants = append(variants, leadershipVariant)
	}
	return variants
}

// hasStrongLeadership matches on the answer's category (see CategoryOf), not on a "leadership" substring
// of its question ID: business-1 counts, team-leadership-2 does not.
func (c *composer) hasStrongLeadership() bool {
	for _, a := range c.byCategory[CategoryLeadership] {
		if utf8.RuneCountInString(a.Response) > strongLeadershipMinLen {
			return true
		}
	}
	return false
}

func (c *composer) compose(v Variant) Draft {
	tmpl := letterTemplates[v.Tone]
	name := c.in.Student.Name

	focus := make(map[Category]bool, len(v.Focus))
	for _, cat := range v.Focus {
		focus[cat] = true
	}

	sections := []string{tmpl.opening(name, c.in.College.Name)}
	// canonical section order, whatever the order of v.Focus
	if focus[CategoryAcademic] {
		sections = append(sections, c.academicSection())
	}
	if focus[CategoryCharacter] {
		sections = append(sections, c.characterSection())
	}
	if focus[CategoryPersonal] {
		sections = append(sections, c.personalSection())
	}
	if focus[CategorySocial] || focus[CategoryLeadership] {
		sections = append(sections, c.socialLeadershipSection())
	}
	if focus[CategoryExtracurricular] {
		if s := c.extracurricularSection(); s != "" {
			sections = append(sections, s)
		}
	}
	sections = append(sections, c.alignmentSection(), tmpl.closing(name))

	content := strings.Join(sections, sectionSeparator)
	return Draft{
		Tone:      v.Tone,
		Focus:     append([]Category{}, v.Focus...),
		Content:   content,
		WordCount: WordCount(content),
	}
}

func (c *composer) academicSection() string {
	name := c.in.Student.Name
	answers := c.byCategory[CategoryAcademic]
	if len(answers) == 0 {
		return fmt.Sprintf("Academically, %s has demonstrated consistent excellence in my class. "+
			"Their dedication to learning and intellectual curiosity set them apart from their peers.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Academically, %s has been exceptional. ", name)
	if primary := answers[0]; utf8.RuneCountInString(primary.Response) > academicDetailMinLen {
		b.WriteString(ProcessTeacherResponse(primary.Response))
	} else {
		b.WriteString("Their performance in my class has been consistently outstanding, demonstrating both intellectual ability and genuine curiosity.")
	}

	if gpa := c.in.Student.GPA; gpa != nil {
		fmt.Fprintf(&b, " With a GPA of %s, %s ranks among the top performers in their cohort.", formatGPA(*gpa), name)
	}
	if subjects := c.in.Student.Subjects; len(subjects) > 0 {
		fmt.Fprintf(&b, " Their strength spans across %s, showing remarkable versatility in their academic pursuits.",
			strings.Join(firstN(subjects, 2), " and "))
	}
	return b.String()
}

func (c *composer) characterSection() string {
	section := fmt.Sprintf("What truly distinguishes %s is their exceptional character. ", c.in.Student.Name)

	answers := c.byCategory[CategoryCharacter]
	if len(answers) == 0 {
		return section + "They demonstrate integrity, respect for others, and a genuine desire to contribute positively to their community."
	}
	section += ProcessTeacherResponse(answers[0].Response)
	if notes := answers[0].Notes; strings.TrimSpace(notes) != "" {
		section += " " + ProcessTeacherResponse(notes)
	}
	return section
}

func (c *composer) personalSection() string {
	section := fmt.Sprintf("To give you a more personal perspective on %s, ", c.in.Student.Name)

	answers := c.byCategory[CategoryPersonal]
	if len(answers) == 0 {
		return section + "I can share that they consistently go above and beyond in small but meaningful ways, " +
			"showing consideration for others and genuine care for their learning environment."
	}
	story := answers[0]
	for _, a := range answers {
		if utf8.RuneCountInString(a.Response) > personalStoryMinLen {
			story = a
			break
		}
	}
	return section + ProcessTeacherResponse(story.Response)
}

func (c *composer) socialLeadershipSection() string {
	section := "In terms of social and leadership qualities, "

	var answers []Answer
	for _, a := range c.in.Answers {
		if cat, ok := CategoryOf(a.QuestionID); ok && (cat == CategorySocial || cat == CategoryLeadership) {
			answers = append(answers, a)
		}
	}
	if len(answers) == 0 {
		return section + fmt.Sprintf("%s demonstrates excellent interpersonal skills and shows natural leadership potential "+
			"through their positive influence on classmates.", c.in.Student.Name)
	}
	section += ProcessTeacherResponse(answers[0].Response)
	if len(answers) > 1 {
		section += " Additionally, " + ProcessTeacherResponse(answers[1].Response)
	}
	return section
}

// extracurricularSection returns "" when the student lists no activities.
func (c *composer) extracurricularSection() string {
	activities := c.in.Student.Extracurriculars
	if len(activities) == 0 {
		return ""
	}
	return fmt.Sprintf("Beyond academics, %s is actively involved in %s. "+
		"These activities showcase their well-rounded nature and commitment to personal growth beyond the classroom.",
		c.in.Student.Name, joinProse(activities))
}

func (c *composer) alignmentSection() string {
	name := c.in.Student.Name
	col := c.in.College

	var b strings.Builder
	fmt.Fprintf(&b, "%s would be an excellent fit for %s. ", name, col.Name)
	if len(col.Values) > 0 {
		fmt.Fprintf(&b, "Your institution's emphasis on %s aligns perfectly with %s's demonstrated qualities. ",
			strings.Join(firstN(col.Values, 2), " and "), name)
	}
	if sentence, ok := alignmentSentences[col.Type]; ok {
		b.WriteString(sentence)
	} else {
		b.WriteString(defaultAlignmentSentence)
	}
	return b.String()
}

// ProcessTeacherResponse trims the response, terminates it with a period unless it already ends
// with '.', '!' or '?', and upper-cases its first letter.
func ProcessTeacherResponse(response string) string {
	processed := strings.TrimSpace(response)
	if !strings.HasSuffix(processed, ".") && !strings.HasSuffix(processed, "!") && !strings.HasSuffix(processed, "?") {
		processed += "."
	}
	r, size := utf8.DecodeRuneInString(processed)
	return string(unicode.ToUpper(r)) + processed[size:]
}

// WordCount counts the whitespace separated tokens of s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// joinProse joins items as "a", "a and b" or "a, b, and c".
func joinProse(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func formatGPA(gpa float64) string {
	return strconv.FormatFloat(gpa, 'f', -1, 64)
}
