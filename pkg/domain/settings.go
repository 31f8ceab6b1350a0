package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SettingType enumerates the value types an admin setting can carry.
type SettingType string

const (
	SettingTypeString  SettingType = "string"
	SettingTypeInteger SettingType = "integer"
	SettingTypeFloat   SettingType = "float"
	SettingTypeBoolean SettingType = "boolean"
	// SettingTypeChoice is a string constrained to the Choices list.
	SettingTypeChoice SettingType = "choice"
)

// Setting is one administrator-changeable setting: a typed value stored
// under a unique key. All external-API credentials, endpoint URLs, wait
// times and batch sizes live here rather than in the static config file so
// operators can change them without a redeploy.
type Setting struct {
	Key   string      `json:"key"`
	Value string      `json:"value"`
	Type  SettingType `json:"type"`
	// Choices holds the allowed values for choice settings, one per line.
	Choices string `json:"choices,omitempty"`
}

// Int returns the value coerced to an integer.
func (s Setting) Int() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s.Value))
	if err != nil {
		return 0, fmt.Errorf("setting %q is not an integer: %w", s.Key, err)
	}

	return n, nil
}

// Float returns the value coerced to a float.
func (s Setting) Float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("setting %q is not a float: %w", s.Key, err)
	}

	return f, nil
}

// Bool returns the value coerced to a boolean. Only the literal "true" is
// truthy, matching how the admin form stores checkbox state.
func (s Setting) Bool() bool {
	return s.Value == "true"
}

// Validate checks that the stored value parses under the declared type and,
// for choice settings, that it is one of the allowed choices.
func (s Setting) Validate() error {
	switch s.Type {
	case SettingTypeInteger:
		_, err := s.Int()

		return err
	case SettingTypeFloat:
		_, err := s.Float()

		return err
	case SettingTypeBoolean:
		if s.Value != "true" && s.Value != "false" {
			return fmt.Errorf("setting %q must be true or false, got %q", s.Key, s.Value)
		}
	case SettingTypeChoice:
		for _, c := range strings.Split(s.Choices, "\n") {
			if strings.TrimSpace(c) == s.Value {
				return nil
			}
		}

		return fmt.Errorf("setting %q value %q is not an allowed choice", s.Key, s.Value)
	case SettingTypeString:
	}

	return nil
}
