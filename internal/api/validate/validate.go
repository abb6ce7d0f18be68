package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NonEmpty rejects empty or all-whitespace required fields.
func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Email validates a recipient address.
func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email: %s", v)
	}
	return nil
}

// Recipients validates a share recipient list: non-empty, every entry a
// plausible address.
func Recipients(rcpts []string) error {
	if len(rcpts) == 0 {
		return fmt.Errorf("recipients are required")
	}
	for _, r := range rcpts {
		if err := Email(r); err != nil {
			return err
		}
	}
	return nil
}

// Tags checks the optional tags field: order is preserved and entries are
// free-form, but blank entries are rejected.
func Tags(tags []string) error {
	for i, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tag %d is empty", i)
		}
	}
	return nil
}
