package server

import (
	"errors"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
)

var queryDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func parseOptionalSnowflakeID(value string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, errors.New("invalid_snowflake_id")
	}
	return &parsed, nil
}

func parseOptionalDate(value string) (*string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if !queryDatePattern.MatchString(trimmed) {
		return nil, errors.New("invalid_date")
	}
	return &trimmed, nil
}
