package models

import "strings"

// ParseUserAgent extracts coarse browser, OS and device information.
func ParseUserAgent(ua string) DeviceInfo {
	info := DeviceInfo{
		Browser: browserName(ua),
		OS:      osName(ua),
		Device:  "Desktop",
	}
	for _, marker := range []string{"Mobile", "Android", "iPhone", "iPad"} {
		if strings.Contains(ua, marker) {
			info.IsMobile = true
			info.Device = "Mobile"
			break
		}
	}
	return info
}

func browserName(ua string) string {
	switch {
	case ua == "":
		return "Unknown"
	case strings.Contains(ua, "Edg/") || strings.Contains(ua, "Edge"):
		return "Edge"
	case strings.Contains(ua, "OPR/") || strings.Contains(ua, "Opera"):
		return "Opera"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	}
	return "Unknown"
}

func osName(ua string) string {
	switch {
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad") || strings.Contains(ua, "iOS"):
		return "iOS"
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac OS") || strings.Contains(ua, "Macintosh"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	}
	return "Unknown"
}
