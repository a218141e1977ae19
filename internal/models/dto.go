package models

// QuestionDetail is a question together with its options, grouped for the
// nested quiz view. Options is always non-nil, even for an empty question.
type QuestionDetail struct {
	Question
	Options []Option `json:"options"`
}

// QuizDetail is the composite view of a quiz: the quiz row plus all of its
// personality types and its questions with their options. Questions and
// options are sorted by order index at read time.
type QuizDetail struct {
	Quiz      Quiz              `json:"quiz"`
	Types     []PersonalityType `json:"types"`
	Questions []QuestionDetail  `json:"questions"`
}
