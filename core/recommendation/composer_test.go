package recommendation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/student"
)

func compositionInput(answers ...Answer) CompositionInput {
	gpa := 3.9
	return CompositionInput{
		Student: student.Student{
			Name:             "Alex Chen",
			GPA:              &gpa,
			Subjects:         []string{"Math", "Physics", "Chemistry"},
			Extracurriculars: []string{"Robotics Club", "Debate", "Chess"},
		},
		College: college.College{
			Name:            "MIT",
			Type:            college.TypeTechnical,
			Values:          []string{"Innovation", "Collaboration", "Excellence"},
			Characteristics: []string{"Urban campus"},
		},
		Answers: answers,
	}
}

func TestCompose_variants(t *testing.T) {
	longLeadership := strings.Repeat("l", strongLeadershipMinLen+1)
	exactLeadership := strings.Repeat("l", strongLeadershipMinLen)

	tests := []struct {
		name      string
		answers   []Answer
		wantTones []Tone
	}{
		{name: "no answers", wantTones: []Tone{ToneFormal, ToneWarm, ToneEnthusiastic}},
		{
			name:      "short leadership answer",
			answers:   []Answer{{QuestionID: "leadership-1", Response: exactLeadership}},
			wantTones: []Tone{ToneFormal, ToneWarm, ToneEnthusiastic},
		},
		{
			name:      "strong leadership answer",
			answers:   []Answer{{QuestionID: "leadership-1", Response: longLeadership}},
			wantTones: []Tone{ToneFormal, ToneWarm, ToneEnthusiastic, ToneWarm},
		},
		{
			name:      "strong business answer counts as leadership",
			answers:   []Answer{{QuestionID: "business-1", Response: longLeadership}},
			wantTones: []Tone{ToneFormal, ToneWarm, ToneEnthusiastic, ToneWarm},
		},
		{
			name:      "leadership in the question id alone does not count",
			answers:   []Answer{{QuestionID: "team-leadership-2", Response: longLeadership}},
			wantTones: []Tone{ToneFormal, ToneWarm, ToneEnthusiastic},
		},
		{
			name:      "long answer outside leadership",
			answers:   []Answer{{QuestionID: "social-1", Response: longLeadership}},
			wantTones: []Tone{ToneFormal, ToneWarm, ToneEnthusiastic},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts := Compose(compositionInput(tt.answers...))
			tones := make([]Tone, 0, len(drafts))
			for _, d := range drafts {
				tones = append(tones, d.Tone)
			}
			assert.Equal(t, tt.wantTones, tones)
			assert.Len(t, Variants(tt.answers), len(tt.wantTones))
		})
	}
}

func TestCompose_focus(t *testing.T) {
	drafts := Compose(compositionInput(Answer{QuestionID: "leadership-1", Response: strings.Repeat("x", 60)}))
	require.Len(t, drafts, 4)

	assert.Equal(t, []Category{CategoryAcademic, CategoryCharacter}, drafts[0].Focus)
	assert.Equal(t, []Category{CategoryPersonal, CategorySocial, CategoryCharacter}, drafts[1].Focus)
	assert.Equal(t, []Category{CategoryLeadership, CategoryExtracurricular, CategoryAcademic}, drafts[2].Focus)
	assert.Equal(t, []Category{CategoryLeadership, CategorySocial, CategoryCharacter}, drafts[3].Focus)
}

func TestCompose_deterministic(t *testing.T) {
	answers := []Answer{
		{QuestionID: "academic-1", Response: "alex consistently produces work well beyond what the curriculum asks for"},
		{QuestionID: "character-1", Response: "kind and honest", Notes: "mentors younger students"},
		{QuestionID: "leadership-1", Response: "led the robotics team to the regional finals and trained every new member"},
	}
	first := Compose(compositionInput(answers...))
	second := Compose(compositionInput(answers...))
	assert.Equal(t, first, second)

	for _, d := range first {
		assert.Equal(t, WordCount(d.Content), d.WordCount)
		assert.Positive(t, d.WordCount)
	}
}

func TestCompose_formalLetter(t *testing.T) {
	drafts := Compose(compositionInput(
		Answer{QuestionID: "academic-1", Response: "alex consistently produces work well beyond what the curriculum asks for"},
		Answer{QuestionID: "character-1", Response: "kind and honest", Notes: "mentors younger students!"},
	))
	formal := drafts[0].Content
	sections := strings.Split(formal, sectionSeparator)

	assert.True(t, strings.HasPrefix(formal, "Dear Admissions Committee at MIT,\n\n"))
	assert.True(t, strings.HasSuffix(formal, "Sincerely,"))
	assert.Contains(t, formal, "Academically, Alex Chen has been exceptional. "+
		"Alex consistently produces work well beyond what the curriculum asks for. "+
		"With a GPA of 3.9, Alex Chen ranks among the top performers in their cohort. "+
		"Their strength spans across Math and Physics, showing remarkable versatility in their academic pursuits.")
	assert.Contains(t, formal, "What truly distinguishes Alex Chen is their exceptional character. Kind and honest. Mentors younger students!")
	assert.Contains(t, formal, "Alex Chen would be an excellent fit for MIT. "+
		"Your institution's emphasis on Innovation and Collaboration aligns perfectly with Alex Chen's demonstrated qualities. "+
		alignmentSentences[college.TypeTechnical])

	// formal letters carry neither the personal nor the social sections
	assert.NotContains(t, formal, "To give you a more personal perspective")
	assert.NotContains(t, formal, "In terms of social and leadership qualities")
	assert.NotContains(t, formal, "Urban campus")

	// opening and closing span two blocks each
	assert.Len(t, sections, 7)
}

func TestCompose_academicSection(t *testing.T) {
	tests := []struct {
		name     string
		answers  []Answer
		gpa      *float64
		subjects []string
		want     string
	}{
		{
			name:     "no academic answers",
			subjects: []string{"Math"},
			want: "Academically, Alex Chen has demonstrated consistent excellence in my class. " +
				"Their dedication to learning and intellectual curiosity set them apart from their peers.",
		},
		{
			name:    "short answer is not quoted",
			answers: []Answer{{QuestionID: "academic-1", Response: "Excellent."}},
			want: "Academically, Alex Chen has been exceptional. Their performance in my class has been consistently outstanding, " +
				"demonstrating both intellectual ability and genuine curiosity.",
		},
		{
			name:     "whole GPA and one subject",
			answers:  []Answer{{QuestionID: "academic-2", Response: "Excellent."}},
			gpa:      func() *float64 { f := 4.0; return &f }(),
			subjects: []string{"Math"},
			want: "Academically, Alex Chen has been exceptional. Their performance in my class has been consistently outstanding, " +
				"demonstrating both intellectual ability and genuine curiosity. " +
				"With a GPA of 4, Alex Chen ranks among the top performers in their cohort. " +
				"Their strength spans across Math, showing remarkable versatility in their academic pursuits.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := compositionInput(tt.answers...)
			in.Student.GPA = tt.gpa
			in.Student.Subjects = tt.subjects
			assert.Equal(t, tt.want, newComposer(in).academicSection())
		})
	}
}

func TestCompose_personalSection(t *testing.T) {
	story := "once stayed after class every day for a week to help a classmate who had fallen behind catch up on the material"
	require.Greater(t, len(story), personalStoryMinLen)

	c := newComposer(compositionInput(
		Answer{QuestionID: "personal-1", Response: "helps clean up"},
		Answer{QuestionID: "personal-2", Response: story},
	))
	assert.Equal(t, "To give you a more personal perspective on Alex Chen, "+ProcessTeacherResponse(story), c.personalSection())

	c = newComposer(compositionInput(Answer{QuestionID: "personal-1", Response: "helps clean up"}))
	assert.Equal(t, "To give you a more personal perspective on Alex Chen, Helps clean up.", c.personalSection())
}

func TestCompose_socialLeadershipSection(t *testing.T) {
	c := newComposer(compositionInput(
		Answer{QuestionID: "social-1", Response: "a natural team player"},
		Answer{QuestionID: "academic-1", Response: "ignored"},
		Answer{QuestionID: "leadership-1", Response: "captain of the robotics team"},
		Answer{QuestionID: "social-2", Response: "ignored too"},
	))
	assert.Equal(t,
		"In terms of social and leadership qualities, A natural team player. Additionally, Captain of the robotics team.",
		c.socialLeadershipSection(),
	)
}

func TestCompose_extracurricularSection(t *testing.T) {
	in := compositionInput()
	assert.Equal(t, "Beyond academics, Alex Chen is actively involved in Robotics Club, Debate, and Chess. "+
		"These activities showcase their well-rounded nature and commitment to personal growth beyond the classroom.",
		newComposer(in).extracurricularSection())

	in.Student.Extracurriculars = nil
	drafts := Compose(in)
	assert.NotContains(t, drafts[2].Content, "Beyond academics")
}

func TestCompose_alignmentSection(t *testing.T) {
	in := compositionInput()
	in.College.Type = college.TypeOther
	in.College.Values = nil
	assert.Equal(t, "Alex Chen would be an excellent fit for MIT. "+defaultAlignmentSentence, newComposer(in).alignmentSection())
}

func TestProcessTeacherResponse(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "  great student  ", want: "Great student."},
		{in: "great student.", want: "Great student."},
		{in: "really great!", want: "Really great!"},
		{in: "is she great?", want: "Is she great?"},
		{in: "élève brillante", want: "Élève brillante."},
		{in: "", want: "."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ProcessTeacherResponse(tt.in))
		})
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 5, WordCount("one two\tthree\n\nfour  five"))
}

func Test_joinProse(t *testing.T) {
	assert.Equal(t, "", joinProse(nil))
	assert.Equal(t, "Chess", joinProse([]string{"Chess"}))
	assert.Equal(t, "Chess and Debate", joinProse([]string{"Chess", "Debate"}))
	assert.Equal(t, "Chess, Debate, and Band", joinProse([]string{"Chess", "Debate", "Band"}))
}
