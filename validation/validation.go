package validation

import (
	"regexp"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,19}$`)

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func Phone(field, value string, v Violations) {
	if value == "" {
		v[field] = "required"
		return
	}
	if !phoneRe.MatchString(strings.TrimSpace(value)) {
		v[field] = "invalid_phone"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func MinLen(field, value string, minLen int, v Violations) {
	if len(strings.TrimSpace(value)) < minLen {
		v[field] = "too_short"
	}
}
