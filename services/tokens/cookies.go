package tokens

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "AccessToken"
	RefreshCookieName = "RefreshToken"
)

// AccessCookie wraps a freshly issued access token in the cookie shape
// the transport sets on granted sessions.
func (s *Service) AccessCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     AccessCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.AccessExpirySeconds(),
		HttpOnly: true,
	}
}

func (s *Service) RefreshCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.RefreshExpirySeconds(),
		HttpOnly: true,
	}
}

// PairCookies returns the cookies for a freshly issued pair.
func (s *Service) PairCookies(pair *Pair) []*http.Cookie {
	return []*http.Cookie{
		s.AccessCookie(pair.AccessToken),
		s.RefreshCookie(pair.RefreshToken),
	}
}

// ClearCookies returns expired cookies instructing the client to erase
// both tokens. Used on logout regardless of outcome.
func ClearCookies() []*http.Cookie {
	expired := time.Unix(0, 0)
	return []*http.Cookie{
		{
			Name:     AccessCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  expired,
			HttpOnly: true,
		},
		{
			Name:     RefreshCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  expired,
			HttpOnly: true,
		},
	}
}
