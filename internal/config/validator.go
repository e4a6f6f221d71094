// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `loader.go` calls `validateStruct` immediately after it unmarshals the
// merged Koanf tree into a `Config` instance.  Any validation error aborts
// startup, so the binary never runs with partial or malformed settings.
//
// Cross-field rules that tags cannot express live in `checkPairs`.

package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	return checkPairs(c)
}

// checkPairs rejects half-configured credential pairs.
func checkPairs(c *Config) error {
	if (c.Storage.AccessKeyID == "") != (c.Storage.SecretAccessKey == "") {
		return errors.New("storage.access_key_id and storage.secret_access_key must be set together")
	}
	return nil
}
