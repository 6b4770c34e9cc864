package handlers

import "reactvite/internal/contact"

var requiredMessages = map[string]string{
	contact.FieldName:    "Name is required.",
	contact.FieldEmail:   "Email is required.",
	contact.FieldSubject: "Subject is required.",
	contact.FieldMessage: "Message is required.",
}

// validateDraft returns the message for the first empty field, or "" when
// the draft can be submitted. Like the rendered form, it only enforces
// required fields: any value the visitor typed is accepted as is.
func validateDraft(d contact.Draft) string {
	if missing := d.Missing(); len(missing) > 0 {
		return requiredMessages[missing[0]]
	}
	return ""
}
