package models

import "strings"

// CEFRCodes lists the tier codes in their canonical order.
var CEFRCodes = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

func IsCEFRCode(code string) bool {
	for _, c := range CEFRCodes {
		if c == code {
			return true
		}
	}
	return false
}

// NormalizeTierCode upper-cases and trims a tier code. It does not validate it.
func NormalizeTierCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

const (
	ExerciseTypeMultipleChoice = "multiple-choice"
	ExerciseTypeMatching       = "matching"
	ExerciseTypeFillBlank      = "fill-blank"
	ExerciseTypeComprehensive  = "comprehensive"
)

var ExerciseTypeCodes = []string{
	ExerciseTypeMultipleChoice,
	ExerciseTypeMatching,
	ExerciseTypeFillBlank,
	ExerciseTypeComprehensive,
}

const (
	ProgressLocked     = "locked"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

const (
	PrincipalAdmin = "admin"
	PrincipalUser  = "user"
)
