package college

// Catalog is the default set of institutions seeded on a fresh database.
var Catalog = []College{
	{
		Name:            "MIT",
		Type:            TypeTechnical,
		Values:          []string{"Innovation", "Problem-solving", "Collaboration"},
		Characteristics: []string{"Technical excellence", "Creative thinking", "Leadership"},
	},
	{
		Name:            "Harvard University",
		Type:            TypeLiberalArts,
		Values:          []string{"Academic excellence", "Leadership", "Service"},
		Characteristics: []string{"Critical thinking", "Social responsibility", "Innovation"},
	},
	{
		Name:            "Stanford University",
		Type:            TypeResearch,
		Values:          []string{"Innovation", "Research excellence", "Entrepreneurship"},
		Characteristics: []string{"Research aptitude", "Creative thinking", "Leadership"},
	},
	{
		Name:            "University of Pennsylvania (Wharton)",
		Type:            TypeBusiness,
		Values:          []string{"Leadership", "Entrepreneurship", "Global impact"},
		Characteristics: []string{"Business acumen", "Leadership potential", "Strategic thinking"},
	},
	{
		Name:            "Williams College",
		Type:            TypeLiberalArts,
		Values:          []string{"Intellectual curiosity", "Community", "Excellence"},
		Characteristics: []string{"Critical thinking", "Well-rounded", "Community engagement"},
	},
}
