package recommendation

import (
	"strings"

	"github.com/trezcool/recomendo/core/college"
)

// Category is the closed set of question categories; it also names the focus areas of a letter.
type Category string

const (
	CategoryAcademic        Category = "academic"
	CategoryCharacter       Category = "character"
	CategoryLeadership      Category = "leadership"
	CategorySocial          Category = "social"
	CategoryPersonal        Category = "personal"
	CategoryExtracurricular Category = "extracurricular"
)

var Categories = []Category{
	CategoryAcademic, CategoryCharacter, CategoryLeadership,
	CategorySocial, CategoryPersonal, CategoryExtracurricular,
}

func (c Category) Valid() bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Required bool     `json:"required"`
	FollowUp string   `json:"followUp,omitempty"`
}

// questionTemplate texts use {student} and {college} placeholders.
type questionTemplate Question

func (qt questionTemplate) resolve(r *strings.Replacer) Question {
	q := Question(qt)
	q.Text = r.Replace(qt.Text)
	return q
}

var (
	baseQuestions = []questionTemplate{
		{
			ID:       "academic-1",
			Text:     "How would you describe {student}'s academic performance in your class?",
			Category: CategoryAcademic,
			Required: true,
			FollowUp: "Can you provide a specific example of their academic excellence or improvement?",
		},
		{
			ID:       "academic-2",
			Text:     "What sets {student} apart academically from other students in their grade?",
			Category: CategoryAcademic,
			Required: true,
		},
		{
			ID:       "character-1",
			Text:     "Describe {student}'s character and personal qualities. What makes them unique as a person?",
			Category: CategoryCharacter,
			Required: true,
			FollowUp: "Can you share a specific story or moment that exemplifies these qualities?",
		},
		{
			ID:       "character-2",
			Text:     "Tell us about a time when {student} showed exceptional integrity or moral character.",
			Category: CategoryCharacter,
			Required: true,
		},
		{
			ID:       "leadership-1",
			Text:     "Has {student} demonstrated leadership qualities in your class or school? How?",
			Category: CategoryLeadership,
			Required: false,
			FollowUp: "What was the impact of their leadership on others?",
		},
		{
			ID:       "social-1",
			Text:     "How does {student} interact with their peers and contribute to the classroom environment?",
			Category: CategorySocial,
			Required: true,
		},
		{
			ID:       "personal-1",
			Text:     "Can you share a memorable moment or story about {student} that shows their personality or character? (Even small gestures like helping clean the classroom matter!)",
			Category: CategoryPersonal,
			Required: true,
		},
		{
			ID:       "personal-2",
			Text:     "What would you want admissions officers at {college} to know about {student} that might not be evident from their grades or test scores?",
			Category: CategoryPersonal,
			Required: true,
		},
	}

	bonusQuestions = map[college.Type]questionTemplate{
		college.TypeTechnical: {
			ID:       "tech-1",
			Text:     "{college} values innovation and problem-solving. How has {student} demonstrated these qualities?",
			Category: CategoryExtracurricular,
		},
		college.TypeLiberalArts: {
			ID:       "liberal-1",
			Text:     "{college} seeks students with intellectual curiosity and critical thinking skills. How has {student} shown these traits?",
			Category: CategoryAcademic,
		},
		college.TypeResearch: {
			ID:       "research-1",
			Text:     "{college} is a research-focused institution. Has {student} shown curiosity for research or independent inquiry?",
			Category: CategoryAcademic,
		},
		college.TypeBusiness: {
			ID:       "business-1",
			Text:     "{college} looks for future leaders in business. How has {student} demonstrated entrepreneurial thinking or business acumen?",
			Category: CategoryLeadership,
		},
	}

	// questionCategories maps every known question ID onto its category.
	questionCategories = buildQuestionCategories()
)

func buildQuestionCategories() map[string]Category {
	cats := make(map[string]Category, len(baseQuestions)+len(bonusQuestions))
	for _, q := range baseQuestions {
		cats[q.ID] = q.Category
	}
	for _, q := range bonusQuestions {
		cats[q.ID] = q.Category
	}
	return cats
}

// ResolveQuestionSet builds the ordered questionnaire for a student applying to a college:
// the base questions followed by at most one bonus question picked by the college type.
func ResolveQuestionSet(studentName, collegeName string, collegeType college.Type) []Question {
	r := strings.NewReplacer("{student}", studentName, "{college}", collegeName)

	questions := make([]Question, 0, len(baseQuestions)+1)
	for _, qt := range baseQuestions {
		questions = append(questions, qt.resolve(r))
	}
	if bonus, ok := bonusQuestions[collegeType]; ok {
		questions = append(questions, bonus.resolve(r))
	}
	return questions
}

// CategoryOf returns the category of the question identified by questionID.
// IDs outside the catalog fall back to their "<category>-" prefix.
func CategoryOf(questionID string) (Category, bool) {
	if cat, ok := questionCategories[questionID]; ok {
		return cat, true
	}
	prefix := questionID
	if i := strings.IndexByte(questionID, '-'); i >= 0 {
		prefix = questionID[:i]
	}
	cat := Category(prefix)
	return cat, cat.Valid()
}
