package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/internal/observability"
)

// maxAssetBytes bounds the size of a fetched asset
const maxAssetBytes = 4 << 20

// Asset is a fetched remote file
type Asset struct {
	Body        []byte
	ContentType string
}

// AssetService fetches the sidebar logo from its remote URL.
// The first successful response is kept in memory; failures are retried on the next call.
type AssetService struct {
	url        string
	httpClient *http.Client
	log        logrus.FieldLogger

	mu     sync.RWMutex
	cached *Asset
}

// NewAssetService creates a new asset service for url
func NewAssetService(url string, timeout time.Duration, log logrus.FieldLogger) *AssetService {
	return &AssetService{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.WithField("component", "asset_service"),
	}
}

// URL returns the remote location of the asset
func (s *AssetService) URL() string {
	return s.url
}

// Logo returns the logo, fetching it when it is not cached yet
func (s *AssetService) Logo(ctx context.Context) (*Asset, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		observability.AssetFetches.WithLabelValues("cached").Inc()
		return cached, nil
	}

	asset, err := s.fetch(ctx)
	if err != nil {
		observability.AssetFetches.WithLabelValues("failed").Inc()
		s.log.WithError(err).Warn("Failed to fetch logo")
		return nil, err
	}
	observability.AssetFetches.WithLabelValues("success").Inc()

	s.mu.Lock()
	s.cached = asset
	s.mu.Unlock()

	return asset, nil
}

func (s *AssetService) fetch(ctx context.Context) (*Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &domain.RemoteAssetError{URL: s.url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.RemoteAssetError{URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.RemoteAssetError{URL: s.url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, &domain.RemoteAssetError{URL: s.url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return &Asset{Body: body, ContentType: contentType}, nil
}
