package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/venuedesk/internal/logger"
)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func TestEnrichAttachesInfoAndLogger(t *testing.T) {
	var got *RequestInfo
	var scoped bool
	h := Enrich(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		scoped = logger.FromContext(r.Context()) != nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/submit/royal?key=x", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	req.Header.Set("User-Agent", chromeMac)
	req.Header.Set("Accept-Language", "en-AU,en;q=0.9")
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.True(t, scoped)
	assert.Equal(t, "203.0.113.9", got.ClientIP(), "untrusted proxy header must be ignored")
	assert.Equal(t, "Chrome", got.UA.Browser)
	assert.Equal(t, "Desktop", got.UA.Device)
	assert.Equal(t, "en-au", got.UA.PrimaryLang)
	assert.False(t, got.UA.IsBot)
	assert.Equal(t, "/submit/royal", got.URL.Path)
	assert.Contains(t, got.LogFields(), "203.0.113.9")
}

func TestClientIPTrustedProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "garbage, 198.51.100.7, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", clientIP(req, true).String())

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-Ip", "198.51.100.8")
	assert.Equal(t, "198.51.100.8", clientIP(req, true).String())
	assert.Equal(t, "10.0.0.2", clientIP(req, false).String())
}

func TestNilInfoIsSafe(t *testing.T) {
	var i *RequestInfo
	assert.Equal(t, "", i.ClientIP())
	assert.Nil(t, i.LogFields())
	assert.Nil(t, FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestInitGeo(t *testing.T) {
	require.NoError(t, InitGeo(""))
	assert.Error(t, InitGeo("/nonexistent/GeoLite2-City.mmdb"))
	assert.Equal(t, Geo{IP: nil}, lookupGeo(nil))
}

func TestPrimaryLang(t *testing.T) {
	assert.Equal(t, "fr", primaryLang("fr;q=0.8, en"))
	assert.Equal(t, "", primaryLang(""))
}
