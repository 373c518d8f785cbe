package validation

import (
	"fmt"
	"strings"
)

// SnakeToUpperCamel converts a snake_case identifier to UpperCamelCase.
// Validator name segments are snake_case; issue codes use the camel form.
func SnakeToUpperCamel(snake string) string {
	var b strings.Builder
	capitalizeNext := true
	for _, ch := range snake {
		if ch == '_' {
			capitalizeNext = true
			continue
		}
		if capitalizeNext {
			b.WriteString(strings.ToUpper(string(ch)))
		} else {
			b.WriteRune(ch)
		}
		capitalizeNext = false
	}
	return b.String()
}

// IssueCodePrefix prepends the per-validator issue code to a message. The
// code is derived from the last dotted segment of the validator name, so
// "mapping.intersection.turn_direction_tagging" issue 2 becomes
// "[TurnDirectionTagging-002] ...".
func IssueCodePrefix(validatorName string, number int, message string) string {
	segments := strings.Split(validatorName, ".")
	last := segments[len(segments)-1]
	return fmt.Sprintf("[%s-%03d] %s", SnakeToUpperCamel(last), number, message)
}
