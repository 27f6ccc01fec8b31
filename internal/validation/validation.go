package validation

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidateRequired checks that a field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMaxLength checks the maximum length of a string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return errors.New(fieldName + " must be at most " + strconv.Itoa(maxLength) + " characters long")
	}
	return nil
}

// VoteValidation contains validations for vote submissions
type VoteValidation struct{}

// MaxValueLength bounds a single submitted answer. Long enough for
// free-text feedback, short enough to keep stored rows sane.
const MaxValueLength = 2000

// ValidateVoterID validates the opaque device-generated voter identifier
func (v VoteValidation) ValidateVoterID(voterID string) error {
	if err := ValidateRequired(voterID, "voter_id"); err != nil {
		return err
	}
	return ValidateMaxLength(voterID, 128, "voter_id")
}

// ValidateScalarValue validates a plain string answer
func (v VoteValidation) ValidateScalarValue(value string) error {
	if err := ValidateRequired(value, "value"); err != nil {
		return err
	}
	return ValidateMaxLength(value, MaxValueLength, "value")
}

// ValidateSelections validates a multi-select answer
func (v VoteValidation) ValidateSelections(labels []string) error {
	if len(labels) == 0 {
		return errors.New("value is required")
	}
	for _, label := range labels {
		if err := ValidateRequired(label, "value"); err != nil {
			return err
		}
		if err := ValidateMaxLength(label, MaxValueLength, "value"); err != nil {
			return err
		}
	}
	return nil
}
