package submission

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursework/core"
)

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.FileRef = core.CleanString(ns.FileRef)
	if ns.IsEmpty() {
		return ErrEmptySubmission
	}
	return validate.Struct(ns)
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	gs.Feedback = core.CleanString(gs.Feedback)
	if _, ok := gs.IntegralGrade(); !ok {
		return ErrInvalidGrade
	}
	return validate.Struct(gs)
}
