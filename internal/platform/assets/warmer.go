package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Warmer downloads model files in the background and keeps the most
// recently used ones in memory.
type Warmer struct {
	ctx        context.Context
	httpClient *http.Client
	cache      *lru.Cache
	maxBytes   int64
	logger     logrus.FieldLogger

	group singleflight.Group
	wg    sync.WaitGroup
}

const defaultMaxBytes = 32 << 20

// NewWarmer keeps up to entries files of at most maxBytes each. Downloads
// stop when ctx is done.
func NewWarmer(ctx context.Context, entries int, maxBytes int64, logger logrus.FieldLogger) (*Warmer, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	c, err := lru.New(entries)
	if err != nil {
		return nil, fmt.Errorf("warm cache: %w", err)
	}
	return &Warmer{
		ctx:        ctx,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		cache:      c,
		maxBytes:   maxBytes,
		logger:     logger,
	}, nil
}

// Warm starts downloading rawURL unless it is already cached. It only fails
// when the download cannot be started.
func (w *Warmer) Warm(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse asset url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported asset url scheme %q", u.Scheme)
	}
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if w.cache.Contains(rawURL) {
		return nil
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		_, _, _ = w.group.Do(rawURL, func() (any, error) {
			w.fetch(rawURL)
			return nil, nil
		})
	}()
	return nil
}

// Get returns the cached bytes of rawURL.
func (w *Warmer) Get(rawURL string) ([]byte, bool) {
	v, ok := w.cache.Get(rawURL)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// Wait blocks until every started download has finished.
func (w *Warmer) Wait() {
	w.wg.Wait()
}

func (w *Warmer) fetch(rawURL string) {
	if w.cache.Contains(rawURL) {
		return
	}
	log := w.logger.WithField("url", redact(rawURL))

	req, err := http.NewRequestWithContext(w.ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		log.WithError(err).Warn("warm request failed")
		return
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("warm request failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Warn("warm request rejected")
		return
	}
	if resp.ContentLength > w.maxBytes {
		log.WithField("bytes", resp.ContentLength).Debug("asset too large to keep warm")
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, w.maxBytes+1))
	if err != nil {
		log.WithError(err).Warn("warm read failed")
		return
	}
	if int64(len(body)) > w.maxBytes {
		log.Debug("asset too large to keep warm")
		return
	}

	w.cache.Add(rawURL, body)
	log.WithField("bytes", len(body)).Debug("asset warmed")
}

// redact drops the query so signatures stay out of logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	return u.String()
}
