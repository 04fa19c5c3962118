// Package config reads the environment variables spec.md §6 defines for
// the HTTP front end, following the same getEnv(key, fallback) idiom as
// the teacher's internal/dbconfig/config.go.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the address to bind and, optionally, a TLS certificate pair
// for serving HTTPS plus an unconditional redirect off port 80.
type Config struct {
	// Addr is the address the main listener binds, e.g. "127.0.0.1:3030"
	// or "0.0.0.0:8443".
	Addr string

	// HTTPSCert and HTTPSKey are paths to a certificate and key file. Both
	// must be non-empty together for TLS to be enabled; if exactly one is
	// set, it is ignored (spec.md §6 only treats the pair as meaningful).
	HTTPSCert string
	HTTPSKey  string

	// ItemDBRoot is the on-disk database root described in spec.md §6. Not
	// itself a spec'd env var (the item database is an external
	// collaborator per spec.md §1), but a runnable server needs to be told
	// where to find it, so it follows the same getEnv(key, fallback) idiom
	// as the fields above.
	ItemDBRoot string
}

// TLSEnabled reports whether both HTTPSCert and HTTPSKey were configured.
func (c Config) TLSEnabled() bool {
	return c.HTTPSCert != "" && c.HTTPSKey != ""
}

// FromEnv builds a Config from PKMNDRAFT_PORT, HTTPS_CERT and HTTPS_KEY
// per spec.md §6: absent PKMNDRAFT_PORT binds 127.0.0.1:3030; a present
// one binds 0.0.0.0:<port>.
func FromEnv() (Config, error) {
	portStr := getEnv("PKMNDRAFT_PORT", "")
	if portStr == "" {
		return Config{
			Addr:       "127.0.0.1:3030",
			HTTPSCert:  getEnv("HTTPS_CERT", ""),
			HTTPSKey:   getEnv("HTTPS_KEY", ""),
			ItemDBRoot: getEnv("PKMNDRAFT_ITEM_DB_ROOT", "./items"),
		}, nil
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Config{}, fmt.Errorf("config: PKMNDRAFT_PORT %q is not a valid 16-bit integer: %w", portStr, err)
	}

	return Config{
		Addr:       fmt.Sprintf("0.0.0.0:%d", port),
		HTTPSCert:  getEnv("HTTPS_CERT", ""),
		HTTPSKey:   getEnv("HTTPS_KEY", ""),
		ItemDBRoot: getEnv("PKMNDRAFT_ITEM_DB_ROOT", "./items"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
