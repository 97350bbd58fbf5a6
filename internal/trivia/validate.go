package trivia

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldNames = map[string]string{
	"Question":   "question",
	"Answer":     "answer",
	"Category":   "category",
	"Difficulty": "difficulty",
}

// Validate checks a NewQuestion before it reaches a store.
func (q NewQuestion) Validate() error {
	q.Question = strings.TrimSpace(q.Question)
	q.Answer = strings.TrimSpace(q.Answer)

	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return Invalid("", err.Error())
	}
	fe := fieldErrs[0]
	return Invalid(fieldNames[fe.Field()], describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gte", "lte":
		if fe.Field() == "Difficulty" {
			return fmt.Sprintf("must be between %d and %d", MinDifficulty, MaxDifficulty)
		}
		return "must be a positive id"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
