// Package flash carries one-shot notices across a redirect in a short-lived cookie
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// CookieName is the name of the flash cookie
const CookieName = "flash"

// Category is the severity of a notice. Values match the CSS classes used by the templates.
type Category string

// Category constants
const (
	Success Category = "success"
	Info    Category = "info"
	Warning Category = "warning"
	Danger  Category = "danger"
)

// Message is a single notice shown once to the user
type Message struct {
	Category Category `json:"c"`
	Message  string   `json:"m"`
}

// Add queues a notice for the next rendered page.
// Notices still unread in the request cookie are kept ahead of the new one.
func Add(w http.ResponseWriter, r *http.Request, category Category, message string) {
	messages := append(read(r), Message{Category: category, Message: message})

	data, err := json.Marshal(messages)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the queued notices and clears the cookie
func Pop(w http.ResponseWriter, r *http.Request) []Message {
	if _, err := r.Cookie(CookieName); err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return read(r)
}

// read decodes the flash cookie; a missing or corrupt cookie yields no messages
func read(r *http.Request) []Message {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil
	}
	return messages
}
