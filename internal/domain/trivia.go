package domain

type Question struct {
	ID       int64
	Category string
	Text     string
	Answer   string
}

// DefaultQuestions is the built-in question bank used when no database is configured.
var DefaultQuestions = []Question{
	{ID: 1, Category: "geography", Text: "What is the capital of France?", Answer: "Paris"},
	{ID: 2, Category: "science", Text: "Which planet is known as the Red Planet?", Answer: "Mars"},
	{ID: 3, Category: "literature", Text: "Who wrote '1984'?", Answer: "George Orwell"},
	{ID: 4, Category: "geography", Text: "What is the largest ocean on Earth?", Answer: "Pacific"},
	{ID: 5, Category: "science", Text: "What is the chemical symbol for gold?", Answer: "Au"},
}
