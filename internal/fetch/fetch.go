// Package fetch materializes source clips into the run workspace. Sources may
// be HTTP(S) URLs or local file paths; either way the clip ends up as a
// workspace artifact tracked for cleanup, so later stages only ever read from
// the store.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"stitch/internal/clip"
	"stitch/internal/ledger"
	"stitch/internal/logging"
	"stitch/internal/names"
	"stitch/internal/services"
	"stitch/internal/store"
)

// Options configures fetching behaviour.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Fetcher copies remote and local sources into the workspace store.
type Fetcher struct {
	client    *http.Client
	userAgent string
	store     *store.Store
	ledger    *ledger.Ledger
	scheme    names.Scheme
	logger    *slog.Logger
}

// New constructs a fetcher. A zero timeout means no client-side deadline
// beyond the caller's context.
func New(opts Options, st *store.Store, led *ledger.Ledger, scheme names.Scheme, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		store:     st,
		ledger:    led,
		scheme:    scheme,
		logger:    logging.NewComponentLogger(logger, "fetch"),
	}
}

// Fetch materializes one source as a workspace artifact and returns its
// handle. The artifact is tracked before any bytes are written so partial
// downloads are always cleaned up.
func (f *Fetcher) Fetch(ctx context.Context, index int, source string) (clip.Handle, error) {
	name := f.scheme.Source(index, source)
	f.ledger.Track(name)

	logger := logging.WithContext(ctx, f.logger)
	logger.Debug("fetching source", logging.Int("clip", index), logging.String("source", source))

	var written int64
	var err error
	if isRemote(source) {
		written, err = f.download(ctx, source, name)
	} else {
		written, err = f.copyLocal(source, name)
	}
	if err != nil {
		return clip.Handle{}, err
	}

	logger.Debug("source materialized",
		logging.Int("clip", index),
		logging.String("artifact", name),
		logging.Int64("bytes", written),
	)
	return clip.Handle{Index: index, Name: name}, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (f *Fetcher) download(ctx context.Context, url, name string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "fetch", "build request", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "fetch", "download", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, services.Wrap(services.ErrTransient, "fetch", "download",
			fmt.Sprintf("%s: unexpected status %s", url, resp.Status), nil)
	}
	return f.write(name, resp.Body)
}

func (f *Fetcher) copyLocal(path, name string) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, services.Wrap(services.ErrNotFound, "fetch", "open local source", path, err)
		}
		return 0, services.Wrap(services.ErrValidation, "fetch", "open local source", path, err)
	}
	defer src.Close()
	return f.write(name, src)
}

func (f *Fetcher) write(name string, r io.Reader) (int64, error) {
	dst, err := f.store.Create(name)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "fetch", "create artifact", name, err)
	}
	written, err := io.Copy(dst, r)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "fetch", "write artifact", name, err)
	}
	return written, nil
}
