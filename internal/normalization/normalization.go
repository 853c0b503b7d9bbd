package normalization

import "strings"

// ParseInputString collapses surrounding whitespace from user-provided input.
func ParseInputString(s string) string {
  return strings.TrimSpace(s)
}

func ParseInputStringPtr(s *string) *string {
  if s == nil {
    return nil
  }
  trimmed := strings.TrimSpace(*s)
  return &trimmed
}
