// Package validator holds the small checks configuration types compose in
// their Validate methods.
package validator

import (
	"fmt"
	"net/url"
	"slices"
)

// All returns the first non-nil error.
func All(errors ...error) error {
	for _, err := range errors {
		if err != nil {
			return err
		}
	}
	return nil
}

func Map[T any](items []T, f func(T, string) error, description string) error {
	for i, item := range items {
		if err := f(item, fmt.Sprintf("%s[%d]", description, i)); err != nil {
			return err
		}
	}
	return nil
}

func NotEmpty(field, description string) error {
	if field == "" {
		return fmt.Errorf("%s must not be empty", description)
	}
	return nil
}

func NotNegative[T int | int64](n T, description string) error {
	if n < 0 {
		return fmt.Errorf("%s must not be negative, got %v", description, n)
	}
	return nil
}

func NoDuplicates[T comparable](slice []T, description string) error {
	seen := make(map[T]struct{})
	for _, v := range slice {
		if _, ok := seen[v]; ok {
			return fmt.Errorf("%s contains duplicate value: %v", description, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

func MatchesAllowed[T comparable](field T, allowed []T, description string) error {
	if !slices.Contains(allowed, field) {
		return fmt.Errorf("%s must be one of %v, got %v", description, allowed, field)
	}
	return nil
}

// HTTPURL accepts empty strings and absolute http(s) URLs.
func HTTPURL(field, description string) error {
	if field == "" {
		return nil
	}
	u, err := url.Parse(field)
	if err != nil {
		return fmt.Errorf("%s: %w", description, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http or https URL, got %q", description, field)
	}
	return nil
}

// Pattern checks a partial file name pattern has exactly one %s verb.
func Pattern(field, description string) error {
	if field == "" {
		return nil
	}
	verbs := 0
	for i := 0; i < len(field); i++ {
		if field[i] != '%' {
			continue
		}
		if i+1 < len(field) && field[i+1] == 's' {
			verbs++
			i++
			continue
		}
		return fmt.Errorf("%s may only contain %%s verbs, got %q", description, field)
	}
	if verbs != 1 {
		return fmt.Errorf("%s must contain exactly one %%s, got %q", description, field)
	}
	return nil
}
