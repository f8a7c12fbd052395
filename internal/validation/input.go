package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input limits
const (
	MaxSegmentLength = 255
	MaxMessageLength = 100000  // log messages
	MaxJSONPayload   = 1048576 // 1MB record payloads
	MaxUploadSize    = 100 << 20
)

// ValidateSegment validates a namespace or endpoint path segment. Endpoints
// may contain '/' for nested paths; namespaces may not.
func ValidateSegment(kind, value string, allowSlash bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	if length := utf8.RuneCountInString(value); length > MaxSegmentLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters (got %d)", kind, MaxSegmentLength, length)
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		case r == '/' && allowSlash:
		default:
			return fmt.Errorf("invalid %s %q: contains invalid character '%c'", kind, value, r)
		}
	}
	if strings.Contains(value, "..") {
		return fmt.Errorf("invalid %s %q", kind, value)
	}
	return nil
}

// ValidateMessageContent validates a log message length. Empty is allowed.
func ValidateMessageContent(content string) error {
	if length := len(content); length > MaxMessageLength {
		return fmt.Errorf("message content exceeds maximum size of %d bytes (got %d)", MaxMessageLength, length)
	}
	return nil
}

// ValidateJSONPayload validates that payload is JSON within the size limit.
func ValidateJSONPayload(payload string) error {
	if payload == "" {
		return fmt.Errorf("JSON payload cannot be empty")
	}
	if length := len(payload); length > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d)", MaxJSONPayload, length)
	}
	if !json.Valid([]byte(payload)) {
		return fmt.Errorf("payload is not valid JSON")
	}
	return nil
}

// ValidateUploadSize validates file content size.
func ValidateUploadSize(size int64) error {
	if size > MaxUploadSize {
		return fmt.Errorf("file exceeds maximum size of %d bytes (got %d)", MaxUploadSize, size)
	}
	return nil
}

// ParseNonNegativeInt parses take/skip style counters.
func ParseNonNegativeInt(s string, fieldName string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", fieldName, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", fieldName)
	}
	return int(n), nil
}
