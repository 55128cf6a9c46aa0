// Package session keeps dismissal state in browser-session cookies: no
// expiry is set, so the browser drops them when the session ends.
package session

import (
	"net/http"
)

// Cookies is a modal.Store over one request/response pair. Writes are visible
// to later reads within the same request.
type Cookies struct {
	r       *http.Request
	w       http.ResponseWriter
	secure  bool
	pending map[string]*string
}

func NewCookies(w http.ResponseWriter, r *http.Request, secure bool) *Cookies {
	return &Cookies{r: r, w: w, secure: secure, pending: map[string]*string{}}
}

func (c *Cookies) Get(key string) (string, bool) {
	if v, ok := c.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	ck, err := c.r.Cookie(key)
	if err != nil {
		return "", false
	}
	return ck.Value, true
}

func (c *Cookies) Set(key, value string) {
	c.pending[key] = &value
	http.SetCookie(c.w, c.cookie(key, value, 0))
}

func (c *Cookies) Remove(key string) {
	c.pending[key] = nil
	http.SetCookie(c.w, c.cookie(key, "", -1))
}

func (c *Cookies) cookie(key, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
