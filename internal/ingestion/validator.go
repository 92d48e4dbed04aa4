package ingestion

import (
	"fmt"
	"strconv"
	"strings"

	"gosus/domain/core"
	"gosus/domain/sus"
)

const (
	fieldCount = sus.ItemCount + 1
	labelField = sus.ItemCount
	minLines   = 3
	minRating  = 1
	maxRating  = 5
)

// Kind classifies why a questionnaire file was rejected
type Kind int

const (
	EmptyInput Kind = iota + 1
	MissingHeaderOrData
	InvalidHeader
	MalformedRow
	InvalidRating
	MissingSystemLabel
	InsufficientGroups
)

func (k Kind) String() string {
	switch k {
	case EmptyInput:
		return "EmptyInput"
	case MissingHeaderOrData:
		return "MissingHeaderOrData"
	case InvalidHeader:
		return "InvalidHeader"
	case MalformedRow:
		return "MalformedRow"
	case InvalidRating:
		return "InvalidRating"
	case MissingSystemLabel:
		return "MissingSystemLabel"
	case InsufficientGroups:
		return "InsufficientGroups"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ValidationError describes the first problem found in the input. Line and
// Question are 1-based and zero when they do not apply.
type ValidationError struct {
	Kind     Kind
	Line     int
	Question int
	Value    string
	Message  string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return core.ErrValidation
}

// Validate checks raw questionnaire text. The message is empty iff valid.
func Validate(content string) (bool, string) {
	if err := Check(content); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Check validates raw questionnaire text and returns a *ValidationError
// describing the first problem, or nil.
//
// Lines are split on '\n'; a trailing '\r' is treated as whitespace. Blank
// lines are skipped anywhere after the header.
func Check(content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Kind: EmptyInput, Message: "The provided .csv file is empty."}
	}

	lines := strings.Split(content, "\n")
	if len(lines) < minLines {
		return &ValidationError{
			Kind:    MissingHeaderOrData,
			Message: "The provided file must contain a header and at least one row of data.",
		}
	}

	if !validHeader(lines[0]) {
		return &ValidationError{
			Kind: InvalidHeader,
			Line: 1,
			Message: "The header appears to be incorrect or missing. Expected is that the first row are 11 columns " +
				"ranging from 'Question 1' to 'Question 10' and ending with the 'System' variable.",
		}
	}

	labels := make(map[string]struct{})
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		lineNo := i + 1

		fields := strings.Split(line, ";")
		if len(fields) != fieldCount {
			return &ValidationError{
				Kind: MalformedRow,
				Line: lineNo,
				Message: fmt.Sprintf("There appears to be a problem with the data format. "+
					"The data in row %d does not have exactly 11 columns.", lineNo),
			}
		}

		for q := 0; q < sus.ItemCount; q++ {
			if _, ok := parseRating(fields[q]); !ok {
				return &ValidationError{
					Kind:     InvalidRating,
					Line:     lineNo,
					Question: q + 1,
					Value:    fields[q],
					Message: fmt.Sprintf("There appears to be at least one invalid item score. In row %d for question %d, "+
						"the value \"%s\" was found. Only items scores between 1 and 5 are allowed.", lineNo, q+1, fields[q]),
				}
			}
		}

		label := strings.TrimSpace(fields[labelField])
		if label == "" {
			return &ValidationError{
				Kind: MissingSystemLabel,
				Line: lineNo,
				Message: fmt.Sprintf("The System/Variable column is empty in row %d. Please provide system/variable "+
					"names so the data can be associated to a variable.", lineNo),
			}
		}
		labels[label] = struct{}{}
	}

	if len(labels) < 2 {
		return &ValidationError{
			Kind: InsufficientGroups,
			Message: "There must be at least two unique systems/variables in the provided data set " +
				"to perform inferential statistics.",
		}
	}
	return nil
}

func validHeader(line string) bool {
	headers := strings.Split(strings.TrimSpace(line), ";")
	return len(headers) == fieldCount &&
		strings.HasPrefix(headers[0], "Question 1") &&
		headers[9] == "Question 10"
}

func parseRating(field string) (int, bool) {
	rating, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || rating < minRating || rating > maxRating {
		return 0, false
	}
	return rating, true
}
