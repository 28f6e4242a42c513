package gcp

import (
	"errors"
	"testing"
)

func setStorageEnv(t *testing.T, mode, host, bucket, base string) {
	t.Helper()
	t.Setenv("OBJECT_STORAGE_MODE", mode)
	t.Setenv("STORAGE_EMULATOR_HOST", host)
	t.Setenv("LECTURE_FILES_BUCKET", bucket)
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", base)
}

func TestStorageConfigDefaults(t *testing.T) {
	setStorageEnv(t, "", "", "", "")
	cfg, err := StorageConfigFromEnv()
	if err != nil {
		t.Fatalf("StorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeGCS || cfg.Bucket != DefaultBucket || cfg.ModeInferred {
		t.Fatalf("defaults: got=%+v", cfg)
	}
}

func TestStorageConfigInfersEmulator(t *testing.T) {
	setStorageEnv(t, "", "http://fake-gcs:4443/", "", "")
	cfg, err := StorageConfigFromEnv()
	if err != nil {
		t.Fatalf("StorageConfigFromEnv: %v", err)
	}
	if !cfg.Emulated() || !cfg.ModeInferred {
		t.Fatalf("mode: want inferred emulator got=%+v", cfg)
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: want trimmed got=%q", cfg.EmulatorHost)
	}
}

func TestStorageConfigErrors(t *testing.T) {
	cases := []struct {
		name, mode, host, base string
		want                   error
	}{
		{"invalid mode", "local", "", "", ErrInvalidMode},
		{"missing host", "gcs_emulator", "", "", ErrMissingEmulator},
		{"relative host", "gcs_emulator", "fake-gcs:4443", "", ErrInvalidURL},
		{"relative base", "gcs", "", "cdn.example.com", ErrInvalidURL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setStorageEnv(t, tc.mode, tc.host, "", tc.base)
			if _, err := StorageConfigFromEnv(); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestObjectURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  StorageConfig
		key  string
		want string
	}{
		{
			name: "gcs default",
			cfg:  StorageConfig{Mode: ModeGCS, Bucket: "lecture-files"},
			key:  "/u/l/f.pdf",
			want: "https://storage.googleapis.com/lecture-files/u/l/f.pdf",
		},
		{
			name: "gcs with public base",
			cfg:  StorageConfig{Mode: ModeGCS, Bucket: "lecture-files", PublicBaseURL: "https://cdn.example.com"},
			key:  "u/l/f.pdf",
			want: "https://cdn.example.com/lecture-files/u/l/f.pdf",
		},
		{
			name: "emulator escapes key",
			cfg:  StorageConfig{Mode: ModeEmulator, Bucket: "lecture-files", EmulatorHost: "http://fake-gcs:4443"},
			key:  "u/l/f.pdf",
			want: "http://fake-gcs:4443/storage/v1/b/lecture-files/o/u%2Fl%2Ff.pdf?alt=media",
		},
		{
			name: "emulator prefers public base",
			cfg:  StorageConfig{Mode: ModeEmulator, Bucket: "lecture-files", EmulatorHost: "http://fake-gcs:4443", PublicBaseURL: "http://localhost:4443"},
			key:  "k.pdf",
			want: "http://localhost:4443/storage/v1/b/lecture-files/o/k.pdf?alt=media",
		},
	}
	for _, tc := range cases {
		if got := objectURL(tc.cfg, tc.key); got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a/B.PDF":   "application/pdf",
		"deck.pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"noext":     "application/octet-stream",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Fatalf("%s: want=%s got=%s", key, want, got)
		}
	}
}
