package models

// QuestionType is the kind of answer a question expects.
type QuestionType string

const (
	QuestionTypeText     QuestionType = "TEXT"
	QuestionTypeImage    QuestionType = "IMAGE"
	QuestionTypeDate     QuestionType = "DATE"
	QuestionTypeTime     QuestionType = "TIME"
	QuestionTypeCheckbox QuestionType = "CHECKBOX"
	QuestionTypeDropdown QuestionType = "DROPDOWN"
)

// IsMultipleOption reports whether answers are picked from a list of options.
func (t QuestionType) IsMultipleOption() bool {
	return t == QuestionTypeCheckbox || t == QuestionTypeDropdown
}

// Question is a single entry of a group's questionnaire.
type Question struct {
	ID            string       `json:"id,omitempty"`
	Question      string       `json:"question"`
	QuestionType  QuestionType `json:"questionType"`
	Hint          *string      `json:"hint"`
	QuestionIndex int          `json:"questionIndex"`
	Options       []string     `json:"options"`
}

// QuestionRequest is a question as submitted by a client.
type QuestionRequest struct {
	Question      string       `json:"question" validate:"required"`
	QuestionType  QuestionType `json:"questionType" validate:"required,oneof=TEXT IMAGE DATE TIME CHECKBOX DROPDOWN"`
	Hint          *string      `json:"hint"`
	QuestionIndex int          `json:"questionIndex" validate:"gte=0"`
	Options       []string     `json:"options"`
}

// GroupQuestionsRequest replaces the questions of a group.
type GroupQuestionsRequest struct {
	GroupID   string            `json:"groupId" validate:"required"`
	Questions []QuestionRequest `json:"questions" validate:"dive"`
}
