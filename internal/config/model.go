// internal/config/model.go
//
// Typed configuration model for venuedesk.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `INTAKE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • E-mail settings are optional.  Leaving `email.api_key` or
//     `email.admin_address` blank disables notifications.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.  TrustProxy makes request logging and
// rate limiting read the client address from X-Forwarded-For; enable it
// only behind a proxy that overwrites that header.
type HTTP struct {
	ListenAddr  string `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS  bool   `koanf:"force_https"`
	BaseURL     string `koanf:"base_url"      validate:"required,url"`
	MaxUploadMB int64  `koanf:"max_upload_mb" validate:"gte=0"`
	TrustProxy  bool   `koanf:"trust_proxy"`
}

//
// Database section
//

// Database holds the MySQL DSN.  The DSN usually carries a password, so
// production configs point it at Vault (`vault:kv/venuedesk#dsn`).
type Database struct {
	DSN     string `koanf:"dsn"      validate:"required"`
	MaxOpen int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle int    `koanf:"max_idle" validate:"gte=0"`
}

//
// Storage section
//

// Storage configures the S3-compatible attachment bucket.  Endpoint is set
// for MinIO or other non-AWS providers; PublicBaseURL overrides the derived
// object URL when a CDN fronts the bucket.
type Storage struct {
	Bucket          string `koanf:"bucket"            validate:"required"`
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	DisableSSL      bool   `koanf:"disable_ssl"`
	PublicBaseURL   string `koanf:"public_base_url"   validate:"omitempty,url"`
}

//
// E-mail section
//

// Email configures staff notifications through a Resend-compatible API.
type Email struct {
	APIKey       string        `koanf:"api_key"`
	APIURL       string        `koanf:"api_url"       validate:"omitempty,url"`
	From         string        `koanf:"from"`
	AdminAddress string        `koanf:"admin_address" validate:"omitempty,email"`
	Timeout      time.Duration `koanf:"timeout"`
}

// Enabled reports whether both the provider key and the recipient are set.
func (e Email) Enabled() bool { return e.APIKey != "" && e.AdminAddress != "" }

//
// Auth section
//

// Auth points at the hosted auth provider.  JWTSecret verifies the
// provider's HS256 session tokens; AdminEmails, when non-empty, restricts
// the admin surfaces to those addresses.
type Auth struct {
	ProviderURL string   `koanf:"provider_url" validate:"required,url"`
	AnonKey     string   `koanf:"anon_key"     validate:"required"`
	JWTSecret   string   `koanf:"jwt_secret"   validate:"required,min=16"`
	AdminEmails []string `koanf:"admin_emails" validate:"dive,email"`
}

//
// Redis section
//

// Redis backs the intake rate limiter.  A blank Addr disables limiting.
type Redis struct {
	Addr       string        `koanf:"addr"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"          validate:"gte=0"`
	RateLimit  int           `koanf:"rate_limit"  validate:"gte=0"`
	RateWindow time.Duration `koanf:"rate_window"`
}

//
// Security section
//

// Security carries the CSRF signing key (base64url, at least 32 bytes) and
// the optional GeoLite2 database used for request logging.
type Security struct {
	CSRFKey   string `koanf:"csrf_key"`
	GeoIPPath string `koanf:"geoip_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // INTAKE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Storage  Storage  `koanf:"storage"`
	Email    Email    `koanf:"email"`
	Auth     Auth     `koanf:"auth"`
	Redis    Redis    `koanf:"redis"`
	Security Security `koanf:"security"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills zero values that have a sensible fallback.
func (c *Config) applyDefaults() {
	if c.HTTP.MaxUploadMB == 0 {
		c.HTTP.MaxUploadMB = 512
	}
	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 15
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Email.APIURL == "" {
		c.Email.APIURL = "https://api.resend.com/emails"
	}
	if c.Email.From == "" {
		c.Email.From = "Social Media Requests <onboarding@resend.dev>"
	}
	if c.Email.Timeout == 0 {
		c.Email.Timeout = 10 * time.Second
	}
	if c.Redis.RateLimit == 0 {
		c.Redis.RateLimit = 20
	}
	if c.Redis.RateWindow == 0 {
		c.Redis.RateWindow = 10 * time.Minute
	}
}
