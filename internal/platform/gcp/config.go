package gcp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/yungbote/studyhub-backend/internal/platform/envutil"
)

type StorageMode string

const (
	ModeGCS      StorageMode = "gcs"
	ModeEmulator StorageMode = "gcs_emulator"
)

const DefaultBucket = "lecture-files"

var (
	ErrInvalidMode     = errors.New("invalid object storage mode")
	ErrMissingEmulator = errors.New("emulator mode requires STORAGE_EMULATOR_HOST")
	ErrInvalidURL      = errors.New("expected an absolute URL like http://fake-gcs:4443")
)

// StorageConfig selects real GCS or a fake-gcs-server emulator.
type StorageConfig struct {
	Mode          StorageMode
	EmulatorHost  string
	Bucket        string
	PublicBaseURL string
	// ModeInferred is set when the emulator was picked only because
	// STORAGE_EMULATOR_HOST was present.
	ModeInferred bool
}

func (c StorageConfig) Emulated() bool { return c.Mode == ModeEmulator }

// StorageConfigFromEnv reads OBJECT_STORAGE_MODE, STORAGE_EMULATOR_HOST,
// LECTURE_FILES_BUCKET and OBJECT_STORAGE_PUBLIC_BASE_URL.
func StorageConfigFromEnv() (StorageConfig, error) {
	cfg := StorageConfig{
		EmulatorHost:  strings.TrimRight(envutil.String("STORAGE_EMULATOR_HOST", ""), "/"),
		Bucket:        envutil.String("LECTURE_FILES_BUCKET", DefaultBucket),
		PublicBaseURL: strings.TrimRight(envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", ""), "/"),
	}
	raw := envutil.String("OBJECT_STORAGE_MODE", "")
	switch mode := StorageMode(strings.ToLower(raw)); mode {
	case "":
		cfg.Mode = ModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode, cfg.ModeInferred = ModeEmulator, true
		}
	case ModeGCS, ModeEmulator:
		cfg.Mode = mode
	default:
		return cfg, fmt.Errorf("%w: OBJECT_STORAGE_MODE=%q (want %q or %q)", ErrInvalidMode, raw, ModeGCS, ModeEmulator)
	}
	return cfg, cfg.Validate()
}

func (c StorageConfig) Validate() error {
	if c.Mode != ModeGCS && c.Mode != ModeEmulator {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if c.PublicBaseURL != "" && !absoluteURL(c.PublicBaseURL) {
		return fmt.Errorf("%w: OBJECT_STORAGE_PUBLIC_BASE_URL=%q", ErrInvalidURL, c.PublicBaseURL)
	}
	if !c.Emulated() {
		return nil
	}
	if c.EmulatorHost == "" {
		return ErrMissingEmulator
	}
	if !absoluteURL(c.EmulatorHost) {
		return fmt.Errorf("%w: STORAGE_EMULATOR_HOST=%q", ErrInvalidURL, c.EmulatorHost)
	}
	return nil
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
