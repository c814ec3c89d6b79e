package fingerprint

import (
	"strings"

	"github.com/mileusna/useragent"
)

// Fingerprint is the canonical description of the device a request came
// from. Sub-fields that cannot be derived from the User-Agent header are
// left nil. Two fingerprints are considered the same device when their
// raw user-agent strings are equal; the structured fields are recorded
// for display and notification purposes only.
type Fingerprint struct {
	UserAgent *string     `json:"user_agent"`
	Browser   BrowserInfo `json:"browser"`
	Engine    EngineInfo  `json:"engine"`
	OS        OSInfo      `json:"os"`
	Device    DeviceInfo  `json:"device"`
	CPU       CPUInfo     `json:"cpu"`
}

type BrowserInfo struct {
	Name    *string `json:"name"`
	Version *string `json:"version"`
	Major   *string `json:"major"`
}

type EngineInfo struct {
	Name    *string `json:"name"`
	Version *string `json:"version"`
}

type OSInfo struct {
	Name    *string `json:"name"`
	Version *string `json:"version"`
}

type DeviceInfo struct {
	Vendor *string `json:"vendor"`
	Model  *string `json:"model"`
	Type   *string `json:"type"`
}

type CPUInfo struct {
	Architecture *string `json:"architecture"`
}

// SameDevice reports whether fp and other describe the same device for
// trust purposes: exact equality of the raw user-agent strings.
func (fp Fingerprint) SameDevice(other Fingerprint) bool {
	if fp.UserAgent == nil || other.UserAgent == nil {
		return fp.UserAgent == nil && other.UserAgent == nil
	}
	return *fp.UserAgent == *other.UserAgent
}

// MatchesUserAgent reports whether the fingerprint was derived from the
// given raw user-agent string (nil matches the empty header).
func (fp Fingerprint) MatchesUserAgent(ua *string) bool {
	if fp.UserAgent == nil || ua == nil {
		return fp.UserAgent == nil && ua == nil
	}
	return *fp.UserAgent == *ua
}

// Extract derives a fingerprint from a raw User-Agent header value and
// normalizes the client address. It is a pure function and never fails;
// an empty header yields a fingerprint with all fields absent.
func Extract(userAgentHeader, remoteIP string) (Fingerprint, string) {
	addr := NormalizeAddress(remoteIP)

	if userAgentHeader == "" {
		return Fingerprint{}, addr
	}

	ua := useragent.Parse(userAgentHeader)

	fp := Fingerprint{
		UserAgent: strPtr(userAgentHeader),
		Browser: BrowserInfo{
			Name:    strPtr(ua.Name),
			Version: strPtr(ua.Version),
			Major:   strPtr(majorVersion(ua.Version)),
		},
		OS: OSInfo{
			Name:    strPtr(ua.OS),
			Version: strPtr(ua.OSVersion),
		},
		Device: DeviceInfo{
			Model: strPtr(ua.Device),
			Type:  strPtr(deviceType(ua)),
		},
	}

	return fp, addr
}

// NormalizeAddress canonicalizes the IPv6 loopback to its IPv4 form so
// that local logins match a single stored address.
func NormalizeAddress(ip string) string {
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Bot:
		return "bot"
	case ua.Desktop:
		return "desktop"
	}
	return ""
}

func majorVersion(version string) string {
	if version == "" {
		return ""
	}
	if idx := strings.Index(version, "."); idx >= 0 {
		return version[:idx]
	}
	return version
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
