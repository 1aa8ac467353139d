package web

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/forgeconsole/pkg/cryptox"
)

const flashCookie = "forgeconsole_flash"

// FlashMessage is a one-shot notice shown on the next page.
type FlashMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Flash stores FlashMessages in a signed cookie that is cleared on read.
type Flash struct {
	Key    []byte
	Secure bool
}

// Set queues msg for the next rendered page.
func (f *Flash) Set(w http.ResponseWriter, msg FlashMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    cryptox.Sign(f.Key, payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the queued message, if any, and clears it. Cookies with a bad
// signature are dropped silently.
func (f *Flash) Pop(w http.ResponseWriter, r *http.Request) *FlashMessage {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	payload, err := cryptox.Verify(f.Key, c.Value)
	if err != nil {
		return nil
	}

	var msg FlashMessage
	if err := json.Unmarshal(payload, &msg); err != nil || msg.Message == "" {
		return nil
	}
	return &msg
}
