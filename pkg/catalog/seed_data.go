package catalog

import "github.com/borgmon/lightwalker/pkg/models"

// RoleModelActivities maps a role-model slug to the templates that reflect its habits.
var RoleModelActivities = map[string][]string{
	"marcus-aurelius":   {"morning-reflection", "stoic-evening-review", "cold-shower", "journaling"},
	"benjamin-franklin": {"daily-planning", "deep-reading", "virtue-tracker", "evening-review"},
	"leonardo-da-vinci": {"sketching", "curiosity-walk", "notebook-ideas", "deep-reading"},
	"marie-curie":       {"deep-work-block", "lab-notes", "deep-reading", "power-nap"},
	"maya-angelou":      {"free-writing", "poetry-reading", "call-a-friend", "gratitude-list"},
}

// DefaultTemplates are the built-in activity templates.
var DefaultTemplates = []models.ActivityTemplate{
	{ID: "morning-reflection", Title: "Morning reflection", Description: "Prepare the mind for the day's difficulties", Category: models.CategoryMindfulness, Duration: "10 min", Points: 10, Difficulty: models.DifficultyEasy, Icon: "🧘"},
	{ID: "stoic-evening-review", Title: "Stoic evening review", Description: "Review what went well and what to improve", Category: models.CategoryMindfulness, Duration: "15 min", Points: 15, Difficulty: models.DifficultyMedium, Icon: "🌙"},
	{ID: "gratitude-list", Title: "Gratitude list", Description: "Write three things you are grateful for", Category: models.CategoryMindfulness, Duration: "5 min", Points: 5, Difficulty: models.DifficultyEasy, Icon: "🙏"},
	{ID: "journaling", Title: "Journaling", Description: "Write private notes to yourself", Category: models.CategoryMindfulness, Duration: "20 min", Points: 15, Difficulty: models.DifficultyEasy, Icon: "📓"},
	{ID: "cold-shower", Title: "Cold shower", Description: "Practice voluntary discomfort", Category: models.CategoryPhysical, Duration: "5 min", Points: 20, Difficulty: models.DifficultyHard, Icon: "🚿"},
	{ID: "curiosity-walk", Title: "Curiosity walk", Description: "Walk outside and observe one thing closely", Category: models.CategoryPhysical, Duration: "30 min", Points: 15, Difficulty: models.DifficultyEasy, Icon: "🚶"},
	{ID: "strength-training", Title: "Strength training", Description: "Bodyweight or weights session", Category: models.CategoryPhysical, Duration: "45 min", Points: 25, Difficulty: models.DifficultyHard, Icon: "🏋️"},
	{ID: "deep-reading", Title: "Deep reading", Description: "Read a demanding book without distraction", Category: models.CategoryLearning, Duration: "45 min", Points: 20, Difficulty: models.DifficultyMedium, Icon: "📚"},
	{ID: "poetry-reading", Title: "Poetry reading", Description: "Read a poem aloud twice", Category: models.CategoryLearning, Duration: "10 min", Points: 10, Difficulty: models.DifficultyEasy, Icon: "📜"},
	{ID: "lab-notes", Title: "Lab notes", Description: "Record observations and measurements precisely", Category: models.CategoryLearning, Duration: "20 min", Points: 15, Difficulty: models.DifficultyMedium, Icon: "🔬"},
	{ID: "daily-planning", Title: "Daily planning", Description: "Set the day's priorities and schedule", Category: models.CategoryProductivity, Duration: "15 min", Points: 10, Difficulty: models.DifficultyEasy, Icon: "🗓️"},
	{ID: "deep-work-block", Title: "Deep work block", Description: "Uninterrupted work on the most important task", Category: models.CategoryProductivity, Duration: "1 hour 30 min", Points: 30, Difficulty: models.DifficultyHard, Icon: "🎯"},
	{ID: "virtue-tracker", Title: "Virtue tracker", Description: "Mark the virtue you practiced today", Category: models.CategoryProductivity, Duration: "5 min", Points: 10, Difficulty: models.DifficultyEasy, Icon: "✅"},
	{ID: "evening-review", Title: "What good have I done today?", Description: "Answer the question before bed", Category: models.CategoryProductivity, Duration: "10 min", Points: 10, Difficulty: models.DifficultyEasy, Icon: "📝"},
	{ID: "call-a-friend", Title: "Call a friend", Description: "A real conversation, no texting", Category: models.CategorySocial, Duration: "20 min", Points: 15, Difficulty: models.DifficultyEasy, Icon: "📞"},
	{ID: "family-dinner", Title: "Family dinner", Description: "Eat together with phones away", Category: models.CategorySocial, Duration: "1 hour", Points: 15, Difficulty: models.DifficultyEasy, Icon: "🍽️"},
	{ID: "sketching", Title: "Sketching", Description: "Draw something in front of you", Category: models.CategoryCreative, Duration: "20 min", Points: 15, Difficulty: models.DifficultyMedium, Icon: "✏️"},
	{ID: "notebook-ideas", Title: "Notebook of ideas", Description: "Write down every question that occurs to you", Category: models.CategoryCreative, Duration: "10 min", Points: 10, Difficulty: models.DifficultyEasy, Icon: "💡"},
	{ID: "free-writing", Title: "Free writing", Description: "Write without stopping or editing", Category: models.CategoryCreative, Duration: "30 min", Points: 20, Difficulty: models.DifficultyMedium, Icon: "🖋️"},
	{ID: "hydration-check", Title: "Hydration check", Description: "Drink a full glass of water", Category: models.CategoryWellness, Duration: "5 min", Points: 5, Difficulty: models.DifficultyEasy, Icon: "💧"},
	{ID: "stretch-break", Title: "Stretch break", Description: "Loosen neck, shoulders and back", Category: models.CategoryWellness, Duration: "10 min", Points: 5, Difficulty: models.DifficultyEasy, Icon: "🤸"},
	{ID: "power-nap", Title: "Power nap", Description: "Short restorative sleep", Category: models.CategoryRest, Duration: "20 min", Points: 10, Difficulty: models.DifficultyEasy, Icon: "😴"},
	{ID: "evening-wind-down", Title: "Evening wind-down", Description: "Screens off, lights low", Category: models.CategoryRest, Duration: "30 min", Points: 10, Difficulty: models.DifficultyEasy, Icon: "🛌"},
}

// DefaultRoleModels are the built-in role models.
var DefaultRoleModels = []models.RoleModel{
	{
		Slug:          "marcus-aurelius",
		Name:          "Marcus Aurelius",
		Era:           "121–180 AD",
		Description:   "Roman emperor and Stoic philosopher",
		CoreValues:    []string{"wisdom", "justice", "courage", "temperance"},
		FamousQuotes:  []string{"You have power over your mind, not outside events."},
		DailyRoutines: []string{"Rise early and prepare for the day", "Write reflections in the evening"},
		Attributes: []models.RoleModelAttribute{
			{
				Name:        "Stoic Discipline",
				Description: "Control over reactions to external events",
				Method:      "Separate what you control from what you do not",
				Benefit:     "Calm under pressure",
				DailyDos:    []string{"Morning reflection on the day's challenges", "Evening review of your conduct"},
			},
			{
				Name:        "Duty",
				Description: "Acting for the common good",
				Method:      "Ask what the situation requires of you",
				Benefit:     "Clarity about priorities",
				DailyDos:    []string{"Do one task for someone else"},
			},
		},
	},
	{
		Slug:          "benjamin-franklin",
		Name:          "Benjamin Franklin",
		Era:           "1706–1790",
		Description:   "Printer, scientist, diplomat and self-improver",
		CoreValues:    []string{"industry", "frugality", "order"},
		FamousQuotes:  []string{"Lost time is never found again."},
		DailyRoutines: []string{"5am: What good shall I do this day?", "Schedule every hour"},
		Attributes: []models.RoleModelAttribute{
			{
				Name:        "Order",
				Description: "Let all things have their places and each part of business its time",
				Method:      "Plan the day in hourly blocks",
				Benefit:     "Strategic use of limited time",
				DailyDos:    []string{"Set the day's priorities each morning"},
			},
			{
				Name:        "Industry",
				Description: "Lose no time, be always employed in something useful",
				Method:      "Cut off all unnecessary actions",
				Benefit:     "Compounding output",
				DailyDos:    []string{"Track one virtue each day"},
			},
		},
	},
	{
		Slug:          "leonardo-da-vinci",
		Name:          "Leonardo da Vinci",
		Era:           "1452–1519",
		Description:   "Painter, engineer and relentless observer",
		CoreValues:    []string{"curiosity", "observation", "craft"},
		FamousQuotes:  []string{"Learning never exhausts the mind."},
		DailyRoutines: []string{"Carry a notebook everywhere", "Sketch what you observe"},
		Attributes: []models.RoleModelAttribute{
			{
				Name:        "Curiosity",
				Description: "An insatiable desire to understand how things work",
				Method:      "Write down questions as they occur",
				Benefit:     "A constant stream of new ideas",
				DailyDos:    []string{"Note three questions in your notebook"},
			},
			{
				Name:        "Observation",
				Description: "Seeing details others miss",
				Method:      "Draw from life rather than memory",
				Benefit:     "Sharper attention to detail",
				DailyDos:    []string{"Sketch one object for ten minutes"},
			},
		},
	},
	{
		Slug:          "marie-curie",
		Name:          "Marie Curie",
		Era:           "1867–1934",
		Description:   "Physicist and chemist, two-time Nobel laureate",
		CoreValues:    []string{"perseverance", "rigor", "humility"},
		FamousQuotes:  []string{"Nothing in life is to be feared, it is only to be understood."},
		DailyRoutines: []string{"Long uninterrupted laboratory sessions", "Careful notebooks"},
		Attributes: []models.RoleModelAttribute{
			{
				Name:        "Deep Focus",
				Description: "Sustained concentration on hard problems",
				Method:      "Work in long blocks free of distraction",
				Benefit:     "Breakthroughs on difficult work",
				DailyDos:    []string{"One ninety minute deep work block"},
			},
			{
				Name:        "Perseverance",
				Description: "Continuing through years of setbacks",
				Method:      "Measure progress in small daily steps",
				Benefit:     "Resilience",
				DailyDos:    []string{"Record today's measurements"},
			},
		},
	},
	{
		Slug:          "maya-angelou",
		Name:          "Maya Angelou",
		Era:           "1928–2014",
		Description:   "Poet, memoirist and civil rights activist",
		CoreValues:    []string{"courage", "compassion", "expression"},
		FamousQuotes:  []string{"There is no greater agony than bearing an untold story inside you."},
		DailyRoutines: []string{"Write in a quiet room every morning", "Read poetry aloud"},
		Attributes: []models.RoleModelAttribute{
			{
				Name:        "Creative Courage",
				Description: "Telling the truth in your own voice",
				Method:      "Write every morning before anything else",
				Benefit:     "Authentic expression",
				DailyDos:    []string{"Free write for thirty minutes"},
			},
			{
				Name:        "Compassion",
				Description: "Making people feel seen",
				Method:      "Listen fully before responding",
				Benefit:     "Deeper relationships",
				DailyDos:    []string{"Call a friend and ask how they really are"},
			},
		},
	},
}
