// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"reactvite/internal/contact"
	"reactvite/internal/middleware"
	"reactvite/internal/session"
)

// MaxContactBody bounds the size of a contact submission. The router
// applies it ahead of the CSRF check, which reads the form first.
const MaxContactBody = 64 << 10

// ContactPage renders the Contact page with an empty form. While this
// browser has a submission in progress the submit button renders disabled.
func (s *Site) ContactPage(w http.ResponseWriter, r *http.Request) {
	data := ContactData(contact.Draft{}, s.contact.Delay().Milliseconds())
	data.Data["Sending"] = s.contact.Busy(r.Context(), middleware.CSRFTokenFromCtx(r.Context()))
	s.renderer.Page(w, r, "contact", data)
}

// ContactSubmit handles the plain form post. An incomplete draft re-renders
// the form with the submitted values and no notification; a complete one
// waits out the submission and redirects back with the success toast.
func (s *Site) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxContactBody)
	if err := r.ParseForm(); err != nil {
		status := bodyErrorStatus(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	draft := contact.DraftFromForm(r.PostForm)
	if msg := validateDraft(draft); msg != "" {
		data := ContactData(draft, s.contact.Delay().Milliseconds())
		data.Data["Error"] = msg
		s.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "contact", data)
		return
	}

	ctx := r.Context()
	notification, err := s.contact.Send(ctx, middleware.CSRFTokenFromCtx(ctx), draft)
	switch {
	case errors.Is(err, contact.ErrInFlight):
		// The first submission delivers the toast.
		http.Redirect(w, r, s.renderer.Link("/contact"), http.StatusSeeOther)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	case err != nil:
		slog.Error("contact submit failed", "error", err, "request_id", middleware.RequestIDFromCtx(ctx))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := s.flashes.Add(ctx, w, r, toFlash(notification)); err != nil {
		slog.Error("store contact flash", "error", err, "request_id", middleware.RequestIDFromCtx(ctx))
	}
	http.Redirect(w, r, s.renderer.Link("/contact"), http.StatusSeeOther)
}

// contactResponse is the JSON body of a successful API submission. Draft is
// the reset form state.
type contactResponse struct {
	Notification contact.Notification `json:"notification"`
	Draft        contact.Draft        `json:"draft"`
}

// ContactAPI handles submissions from the enhanced form script.
func (s *Site) ContactAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxContactBody)

	var draft contact.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		if status := bodyErrorStatus(err); status == http.StatusRequestEntityTooLarge {
			writeJSON(w, status, map[string]string{"error": "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	if msg := validateDraft(draft); msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   msg,
			"missing": draft.Missing(),
		})
		return
	}

	ctx := r.Context()
	notification, err := s.contact.Send(ctx, middleware.CSRFTokenFromCtx(ctx), draft)
	switch {
	case errors.Is(err, contact.ErrInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "submission already in progress"})
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	case err != nil:
		slog.Error("contact api failed", "error", err, "request_id", middleware.RequestIDFromCtx(ctx))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	draft.Reset()
	writeJSON(w, http.StatusOK, contactResponse{Notification: notification, Draft: draft})
}

// bodyErrorStatus is 413 when reading the body hit MaxContactBody and 400
// for anything else.
func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func toFlash(n contact.Notification) session.Flash {
	return session.Flash{Title: n.Title, Description: n.Description, Variant: n.Variant}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
