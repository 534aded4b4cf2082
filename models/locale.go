package models

import (
	"regexp"
	"strings"
)

var localePattern = regexp.MustCompile(`^[a-zA-Z]{2}-[a-zA-Z]{2}$`)

// Locale is the optional language-country path prefix, e.g. "en-ke".
type Locale struct {
	Language string
	Country  string
}

// ParseLocale accepts "" (the default locale) or a language-country pair.
func ParseLocale(s string) (Locale, bool) {
	if s == "" {
		return Locale{}, true
	}
	if !localePattern.MatchString(s) {
		return Locale{}, false
	}
	parts := strings.SplitN(s, "-", 2)
	return Locale{Language: strings.ToUpper(parts[0]), Country: strings.ToUpper(parts[1])}, true
}

func (l Locale) IsDefault() bool {
	return l.Language == "" && l.Country == ""
}

// PathPrefix is "" or "/en-ke".
func (l Locale) PathPrefix() string {
	if l.IsDefault() {
		return ""
	}
	return "/" + l.String()
}

func (l Locale) String() string {
	if l.IsDefault() {
		return ""
	}
	return strings.ToLower(l.Language) + "-" + strings.ToLower(l.Country)
}

// Variables returns the @inContext variables for Storefront operations.
func (l Locale) Variables() map[string]any {
	vars := map[string]any{}
	if l.Country != "" {
		vars["country"] = l.Country
	}
	if l.Language != "" {
		vars["language"] = l.Language
	}
	return vars
}
