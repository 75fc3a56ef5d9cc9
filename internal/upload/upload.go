// Package upload stores downloadable copies of query results.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IncorrectPrefix marks files holding results of incorrect submissions.
const IncorrectPrefix = "incorrect-"

// Uploader stores contents under key and returns a URL it can be
// downloaded from.
type Uploader interface {
	Upload(ctx context.Context, key string, contents []byte) (string, error)
}

// ObjectKey builds the key results are stored under: <submission>/<filename>,
// with the filename prefixed by IncorrectPrefix when the answer was wrong.
func ObjectKey(submissionKey, filename string, correct bool) string {
	if !correct {
		filename = IncorrectPrefix + filename
	}
	return path.Join(submissionKey, filename)
}

// ErrInvalidKey is returned for keys that would escape the upload root.
var ErrInvalidKey = errors.New("invalid upload key")

// FSConfig configures a filesystem uploader.
type FSConfig struct {
	// Dir is the root directory files are written under.
	Dir string

	// Prefix is prepended to every key, e.g. "results".
	Prefix string

	// BaseURL is the public URL Dir is served from. Empty yields file://
	// URLs.
	BaseURL string

	Logger *slog.Logger
}

// FS writes uploads to a local directory.
type FS struct {
	dir     string
	prefix  string
	baseURL string
	logger  *slog.Logger
}

// NewFS creates a filesystem uploader rooted at cfg.Dir.
func NewFS(cfg FSConfig) (*FS, error) {
	if cfg.Dir == "" {
		return nil, errors.New("upload directory is required")
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FS{
		dir:     dir,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}, nil
}

// Upload writes contents to <dir>/<prefix>/<key>, replacing any existing
// file.
func (u *FS) Upload(ctx context.Context, key string, contents []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := path.Join(u.prefix, key)
	if key == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	target := filepath.Join(u.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(target, contents, 0o600); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	u.logger.Debug("uploaded results", slog.String("key", name), slog.Int("bytes", len(contents)))

	if u.baseURL != "" {
		return u.baseURL + "/" + name, nil
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(target)}).String(), nil
}

var _ Uploader = (*FS)(nil)
