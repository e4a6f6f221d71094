// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `INTAKE_`, where `__` maps to “.”
     (e.g., `INTAKE_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, every string value of the form `vault:<mount/path>#<key>`
is swapped for the secret it names.  The tree is then unmarshalled into
strongly-typed structs, defaulted, validated, enriched with the runtime
root path, and cached in an `atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG spans for root discovery, YAML read, and secret resolution.
  • ERROR spans for YAML parse, env overlay, unmarshal, and validation.
  • INFO span for the final “config loaded” with key highlights.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`, so
    `go run ./cmd/web` works from any sub-directory.
  • A Vault client is only dialled when at least one `vault:` reference
    is present.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/venuedesk/internal/vault"
)

const (
	envPrefix   = "INTAKE_"
	vaultPrefix = "vault:"
	secretTTL   = 10 * time.Minute
)

var current atomic.Pointer[Config]

// SecretSource resolves one key of a KV secret.  *vault.Client satisfies it.
type SecretSource interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves INTAKE_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to an executable heuristic for the production layout.
func rootDir() string {
	if r := os.Getenv("INTAKE_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root directory and loads from it.  Vault references
// are resolved with a client built from VAULT_ADDR / VAULT_TOKEN.
func Load() (*Config, error) {
	return LoadFrom(rootDir(), nil)
}

// LoadFrom reads .env, YAML, env overrides, resolves secrets, validates,
// and caches Config.  A nil secrets source is replaced by a Vault client on
// first use.
func LoadFrom(root string, secrets SecretSource) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: INTAKE_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(k, secrets); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.applyDefaults()
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"bucket", cfg.Storage.Bucket,
		"email", cfg.Email.Enabled(),
		"rate_limit", cfg.Redis.Addr != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// envKey maps INTAKE_EMAIL__ADMIN_ADDRESS to email.admin_address.
func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// resolveSecrets replaces every `vault:path#key` string in k.
func resolveSecrets(k *koanf.Koanf, secrets SecretSource) error {
	refs := map[string]string{}
	for key, val := range k.All() {
		if s, ok := val.(string); ok && strings.HasPrefix(s, vaultPrefix) {
			refs[key] = strings.TrimPrefix(s, vaultPrefix)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if secrets == nil {
		cli, err := vault.New(ctx, zap.S().Infof)
		if err != nil {
			return err
		}
		secrets = cli
	}

	for key, ref := range refs {
		path, field, ok := strings.Cut(ref, "#")
		if !ok || path == "" || field == "" {
			return fmt.Errorf("config %s: malformed vault reference %q", key, ref)
		}
		val, err := secrets.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
		zap.S().Debugw("config secret resolved", "key", key, "path", path)
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }
