package account

import (
	"strings"
	"time"
)

// DefaultLastLoginPattern is the display pattern recorded alongside the
// formatted last-login date.
const DefaultLastLoginPattern = "DD.MM.YYYY HH:MM:SS"

// LastLoginStamp captures a login moment three ways: the raw timestamp,
// a rendered date string and the pattern it was rendered with.
type LastLoginStamp struct {
	Timestamp int64
	Date      string
	Pattern   string
}

// FormatLastLogin renders now according to the given display pattern.
// Unknown patterns fall back to the default.
func FormatLastLogin(now time.Time, pattern string) LastLoginStamp {
	if pattern == "" {
		pattern = DefaultLastLoginPattern
	}

	replacer := strings.NewReplacer(
		"DD", now.Format("02"),
		"MM", now.Format("01"),
		"YYYY", now.Format("2006"),
		"HH", now.Format("15"),
		"SS", now.Format("05"),
	)

	// MM doubles as month and minutes in the source pattern; the date
	// part is replaced first, then the time part.
	date := pattern
	if parts := strings.SplitN(pattern, " ", 2); len(parts) == 2 {
		datePart := replacer.Replace(parts[0])
		timePart := strings.NewReplacer(
			"HH", now.Format("15"),
			"MM", now.Format("04"),
			"SS", now.Format("05"),
		).Replace(parts[1])
		date = datePart + " " + timePart
	} else {
		date = replacer.Replace(pattern)
	}

	return LastLoginStamp{
		Timestamp: now.UnixMilli(),
		Date:      date,
		Pattern:   pattern,
	}
}
