package utils

import (
	"fmt"
	"strconv"
)

// TokenMaxAge is the admin token lifetime in seconds.
const TokenMaxAge = 2 * 3600

// ParseSessionNumber parses a session path parameter. Only sessions 1 and 2
// exist in this study.
func ParseSessionNumber(raw string) (int, error) {
	session, err := strconv.Atoi(raw)
	if err != nil || (session != 1 && session != 2) {
		return 0, fmt.Errorf("invalid session number: %s", raw)
	}
	return session, nil
}
