// internal/requestinfo/ua.go
//
// User-Agent parsing.  This file isolates the uasurfer API so the rest of
// the codebase never sees its enums or structs.
package requestinfo

import (
	"fmt"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"
)

// parseUA converts a raw header into our UA struct.
func parseUA(raw, acceptLang string) UA {
	u := surfer.Parse(raw)

	os := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if os == "MacOSX" {
		os = "macOS"
	}

	info := UA{
		Raw:         raw,
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     versionToString(u.Browser.Version),
		OS:          os,
		OSVersion:   versionToString(u.OS.Version),
		Platform:    strings.TrimPrefix(u.OS.Platform.String(), "Platform"),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = "Desktop"
	case surfer.DeviceTablet:
		info.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}
	return info
}

// versionToString renders a version in dotted form while trimming
// trailing zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor != 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(al, ",")[0])
	if i := strings.Index(tag, ";"); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
