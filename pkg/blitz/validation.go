package blitz

import (
	"net/url"
	"regexp"

	"github.com/tidwall/gjson"
)

var intPattern = regexp.MustCompile(`^[0-9]+$`)

// ValidateURL reports whether raw is an absolute URL with a scheme and host.
func ValidateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// ValidateInt reports whether v is integer shaped: a number or a string made
// only of decimal digits.
func ValidateInt(v gjson.Result) bool {
	switch v.Type {
	case gjson.Number, gjson.String:
		return intPattern.MatchString(v.String())
	}
	return false
}

// ValidateList reports whether v is a JSON array.
func ValidateList(v gjson.Result) bool {
	return v.IsArray()
}

// Validate runs the checks shared by every job type against an encoded
// option document and returns the names of the fields that failed, in a
// fixed order. Every check runs.
func Validate(options gjson.Result) []string {
	var failed []string

	if v := options.Get("referrer"); v.Exists() && !(v.Type == gjson.String && ValidateURL(v.String())) {
		failed = append(failed, "referrer")
	}
	if v := options.Get("status"); v.Exists() && !ValidateInt(v) {
		failed = append(failed, "status")
	}
	if v := options.Get("timeout"); v.Exists() && !ValidateInt(v) {
		failed = append(failed, "timeout")
	}
	if v := options.Get("cookies"); v.Exists() && !ValidateList(v) {
		failed = append(failed, "cookies")
	}
	if v := options.Get("headers"); v.Exists() && !ValidateList(v) {
		failed = append(failed, "headers")
	}

	return failed
}
