package app

import "civic-quiz-service/internal/domain"

// DefaultQuizID names the built-in civics quiz.
const DefaultQuizID = "civics-basics"

// DefaultQuestions is the built-in civics set used when no content is available.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:                 "civics-1",
			Prompt:             "How many counties does Kenya have?",
			Options:            []string{"42", "47", "52", "38"},
			CorrectOptionIndex: 1,
			Explanation:        "The Constitution of Kenya 2010 created 47 county governments.",
		},
		{
			ID:                 "civics-2",
			Prompt:             "In which year was the current Constitution of Kenya promulgated?",
			Options:            []string{"2005", "2007", "2010", "2013"},
			CorrectOptionIndex: 2,
			Explanation:        "It was promulgated on 27 August 2010 after the referendum.",
		},
		{
			ID:                 "civics-3",
			Prompt:             "Which arm of government makes national laws?",
			Options:            []string{"The Executive", "Parliament", "The Judiciary", "County Assemblies"},
			CorrectOptionIndex: 1,
			Explanation:        "Legislative authority at the national level is vested in Parliament.",
		},
		{
			ID:                 "civics-4",
			Prompt:             "What is the minimum age to register as a voter in Kenya?",
			Options:            []string{"16", "18", "21", "25"},
			CorrectOptionIndex: 1,
			Explanation:        "Every adult citizen, aged 18 and above, may register as a voter.",
		},
		{
			ID:                 "civics-5",
			Prompt:             "Who is the head of the Judiciary?",
			Options:            []string{"The Attorney General", "The Chief Justice", "The Speaker of the National Assembly", "The Director of Public Prosecutions"},
			CorrectOptionIndex: 1,
			Explanation:        "The Chief Justice heads the Judiciary and presides over the Supreme Court.",
		},
	}
}

// DefaultQuiz wraps DefaultQuestions as a quiz.
func DefaultQuiz() domain.Quiz {
	return domain.Quiz{ID: DefaultQuizID, Questions: DefaultQuestions()}
}
