// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package contact implements the contact form: the per-visit draft, the
// simulated submission and the in-flight gate that keeps one submission per
// browser at a time.
package contact

import "net/url"

// Form field names. They double as the input name attributes.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// Fields lists every form field in display order.
var Fields = []string{FieldName, FieldEmail, FieldSubject, FieldMessage}

// Draft is the in-memory contact form of a single page visit. All four
// fields are required.
type Draft struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// DraftFromForm reads the four fields from submitted form values. Unknown
// keys are ignored.
func DraftFromForm(v url.Values) Draft {
	var d Draft
	for _, f := range Fields {
		d.Set(f, v.Get(f))
	}
	return d
}

// Set updates the field with the given name and reports whether the name
// belongs to the form.
func (d *Draft) Set(field, value string) bool {
	switch field {
	case FieldName:
		d.Name = value
	case FieldEmail:
		d.Email = value
	case FieldSubject:
		d.Subject = value
	case FieldMessage:
		d.Message = value
	default:
		return false
	}
	return true
}

// Value returns the current value of the named field.
func (d Draft) Value(field string) string {
	switch field {
	case FieldName:
		return d.Name
	case FieldEmail:
		return d.Email
	case FieldSubject:
		return d.Subject
	case FieldMessage:
		return d.Message
	}
	return ""
}

// Missing returns the names of required fields that are empty. Like the
// browser's required attribute, whitespace counts as a value.
func (d Draft) Missing() []string {
	var missing []string
	for _, f := range Fields {
		if d.Value(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete reports whether every required field has a value.
func (d Draft) Complete() bool {
	return len(d.Missing()) == 0
}

// Reset clears every field.
func (d *Draft) Reset() {
	*d = Draft{}
}
