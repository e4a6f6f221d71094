// internal/vault/vault.go
//
// Vault client wrapper.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK for the one thing venuedesk needs:
//     reading single keys out of KV-v2 secrets while the config loader
//     resolves `vault:` references (database DSN, storage keys, e-mail API
//     key, JWT secret).
//   - Keeps a small per-key cache so repeated lookups during one boot do
//     not round-trip.
//   - Renews its token in the background until ctx is cancelled.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, zap.S().Infof)
//  2. dsn, err := cli.GetKV(ctx, "kv/venuedesk", "dsn", 10*time.Minute)
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// ErrKeyMissing is returned when the secret exists but lacks the key.
var ErrKeyMissing = errors.New("vault: key not found in secret")

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)

	cacheMu sync.RWMutex
	cache   map[string]cached // path#key → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a client from VAULT_ADDR and VAULT_TOKEN and starts the
// token-renewal loop.
func New(ctx context.Context, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		logFn: logFn,
		cache: make(map[string]cached),
	}
	go c.renewLoop(ctx)
	return c, nil
}

// GetKV fetches a single string key from a KV-v2 secret.  ttl > 0 caches
// the value for that long.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("vault: secret path and key must be non-empty")
	}
	canonical := secretPath + "#" + key

	if ttl > 0 {
		if v, ok := c.lookup(canonical); ok {
			return v, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s#%s", ErrKeyMissing, secretPath, key)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: value at %s is not a string", canonical)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	return sval, nil
}

func (c *Client) lookup(canonical string) (string, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	cv, ok := c.cache[canonical]
	if !ok || time.Now().After(cv.exp) {
		return "", false
	}
	return cv.val, true
}

/*──────────────────────────── token renewal ───────────────────────────────*/

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		wait := c.renewOnce(ctx)
		sleep(ctx, wait)
	}
}

// renewOnce runs one lifetime watcher and returns how long to back off
// before the next attempt.
func (c *Client) renewOnce(ctx context.Context) time.Duration {
	sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
	if err != nil {
		c.logFn("vault: token renew failed: %v", err)
		return 30 * time.Second
	}
	if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
		return time.Hour
	}

	w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
		Secret: sec,
		Grace:  15 * time.Second,
	})
	if err != nil {
		c.logFn("vault: watcher init failed: %v", err)
		return 30 * time.Second
	}
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0
		case err := <-w.DoneCh():
			if err != nil {
				c.logFn("vault: token renewal stopped: %v", err)
			}
			return 15 * time.Second
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.logFn("vault: token renewed, ttl=%ds", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// splitMount turns "kv/venuedesk/prod" into ("kv", "venuedesk/prod").
func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
