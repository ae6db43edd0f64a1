package sqlexec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ibranibeny/text2sql"
)

// The read-only check keys on the leading keyword only; it is not a SQL
// parser. Statements that smuggle writes past the leading keyword, such as
// multi-statement payloads or writable CTEs, are outside its scope. The
// database user should still be read-only.

var leadingWord = regexp.MustCompile(`^[A-Za-z]+`)

// ValidateReadOnly rejects any statement that is not a SELECT-class query.
// It skips leading whitespace and SQL comments and requires a SELECT or WITH
// leading keyword.
func ValidateReadOnly(sql string) error {
	body := skipLeadingComments(sql)
	if body == "" {
		return text2sql.NewUnsafeQueryError("empty statement")
	}

	word := strings.ToUpper(leadingWord.FindString(body))
	if word != "SELECT" && word != "WITH" {
		return text2sql.NewUnsafeQueryError(
			fmt.Sprintf("only read-only SELECT statements are allowed, got '%s'", word))
	}
	return nil
}

// skipLeadingComments strips leading whitespace, line comments (-- ...), and
// block comments (/* ... */) so the keyword check sees the first real token.
func skipLeadingComments(sql string) string {
	s := sql
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.Index(s, "\n")
			if idx < 0 {
				return ""
			}
			s = s[idx+1:]
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = s[idx+2:]
		default:
			return s
		}
	}
}
