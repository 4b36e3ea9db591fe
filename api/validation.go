package api

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MessageMissingParameter is reported for absent or empty fields
const MessageMissingParameter = "Missing required parameter in the post body"

var required = validation.Required.Error(MessageMissingParameter)

var widgetNamePattern = regexp.MustCompile(`^[\w-]+$`)

// DeadlineLayouts are the accepted deadline formats, tried in order
var DeadlineLayouts = []string{
	"01/02/2006",
	"2006-01-02",
	"Jan 02 2006",
	"01/02/06",
}

// DeadlineOutputLayout formats deadlines in responses
const DeadlineOutputLayout = "01/02/06"

// ValidateEmail reports "<email> is not a valid email"
func ValidateEmail(value any) error {
	s, _ := value.(string)
	if err := is.Email.Validate(s); err != nil {
		return fmt.Errorf("%s is not a valid email", s)
	}
	return nil
}

// ValidateWidgetName accepts letters, digits, underscore and hyphen
func ValidateWidgetName(value any) error {
	s, _ := value.(string)
	if !widgetNamePattern.MatchString(s) {
		return fmt.Errorf("'%s' contains one or more invalid characters.", s)
	}
	if len(s) > 100 {
		return fmt.Errorf("'%s' is longer than 100 characters.", s)
	}
	return nil
}

// ValidateWidgetURL accepts absolute http(s) URLs with a dotted host
func ValidateWidgetURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	invalid := fmt.Errorf("%s is not a valid URL.", s)
	if err != nil {
		return invalid
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid
	}
	host := u.Hostname()
	if host == "" || host == "localhost" || !strings.Contains(host, ".") {
		return invalid
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return invalid
	}
	return nil
}

// ParseDeadline parses s with DeadlineLayouts in loc
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DeadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"'%s' is not a valid deadline, use one of: 12/31/2030, 2030-12-31, Dec 31 2030, 12/31/30.", s,
	)
}

// ValidateDeadline returns a rule rejecting unparseable or past deadlines.
// A deadline due today is accepted.
func ValidateDeadline(now func() time.Time) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		current := now()
		t, err := ParseDeadline(s, current.Location())
		if err != nil {
			return err
		}
		y, m, d := current.Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, current.Location())
		if t.Before(today) {
			return fmt.Errorf("Deadline must not be in the past.")
		}
		return nil
	}
}
