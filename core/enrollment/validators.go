package enrollment

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursework/core"
)

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	ne.StudentID = core.CleanString(ne.StudentID)
	ne.CourseID = core.CleanString(ne.CourseID)
	return validate.Struct(ne)
}
