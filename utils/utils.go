package utils

import (
	"strconv"
	"strings"
)

// SplitStatusLine takes a response rendered by the elasticsearch client,
// "[201 Created] {...}", and returns the numeric status and the body.
// ok is false when the text does not start with a status prefix.
func SplitStatusLine(str string) (code int, body string, ok bool) {
	trimmed := strings.TrimSpace(str)

	// an opening bracket anywhere else belongs to the body, e.g. a json array
	if !strings.HasPrefix(trimmed, "[") {
		return 0, "", false
	}
	end := strings.Index(trimmed, "]")
	if end == -1 {
		return 0, "", false
	}

	fields := strings.Fields(trimmed[1:end])
	if len(fields) == 0 {
		return 0, "", false
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", false
	}
	return code, strings.TrimSpace(trimmed[end+1:]), true
}

// IsSuccess reports a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
