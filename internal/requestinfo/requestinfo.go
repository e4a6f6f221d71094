//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, IP + geolocation, URL, and timestamp).
//  These structs are inert.  They contain no pointers to database
//  handles or large buffers, so they are safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing, see ua.go)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw         string // Entire User-Agent header
	Browser     string // "Chrome", "Firefox", "Safari", etc.
	Version     string // "124.0.6367"
	OS          string // "macOS", "Windows", "Android", "iOS", etc.
	OSVersion   string // "14.5", "11", "10.0"
	Device      string // "Desktop", "Mobile", "Tablet", "Other"
	Platform    string // "Mac", "Windows", "Linux", "iPad", "iPhone", ...
	IsBot       bool
	PrimaryLang string // First tag from Accept-Language ("en", "es", ...)
}

// Geo holds IP-based geolocation hints.
// These are best-effort and may be empty if the DB has no match.
type Geo struct {
	IP         net.IP
	CountryISO string // "US", "AU", "FR", ...
	City       string
}

// RequestInfo is attached to the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	URL       *url.URL // Pointer copy, safe to dereference read-only
	Timestamp time.Time
}

// ClientIP is the address used for rate limiting and logs, "" if unknown.
func (i *RequestInfo) ClientIP() string {
	if i == nil || i.Geo.IP == nil {
		return ""
	}
	return i.Geo.IP.String()
}

// LogFields flattens the info into zap key/value pairs.
func (i *RequestInfo) LogFields() []any {
	if i == nil {
		return nil
	}
	return []any{
		"ip", i.ClientIP(),
		"country", i.Geo.CountryISO,
		"browser", i.UA.Browser,
		"os", i.UA.OS,
		"device", i.UA.Device,
		"bot", i.UA.IsBot,
	}
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is the shared MaxMind handle.  The reader is safe for
// concurrent lookups; the atomic pointer lets InitGeo run after servers
// start in tests.
var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens the GeoLite2-City database.  An empty path leaves geo
// lookups disabled.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	if old := geoReader.Swap(r); old != nil {
		old.Close()
	}
	return nil
}

// CloseGeo releases the database, if open.
func CloseGeo() {
	if r := geoReader.Swap(nil); r != nil {
		r.Close()
	}
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{}

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// lookupGeo returns best-effort Geo data using the shared reader.
func lookupGeo(ip net.IP) Geo {
	r := geoReader.Load()
	if r == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := r.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
