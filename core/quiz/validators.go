package quiz

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursework/core"
)

func (na *NewAttempt) Validate(validate *validator.Validate) error {
	for i := range na.Answers {
		na.Answers[i].QuestionID = core.CleanString(na.Answers[i].QuestionID)
	}
	return validate.Struct(na)
}
