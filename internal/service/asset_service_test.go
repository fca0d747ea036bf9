package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshare/dashboard/internal/domain"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake-logo")

func TestAssetService_Logo(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(fakePNG)
	}))
	defer srv.Close()

	svc := NewAssetService(srv.URL+"/logo.png", time.Second, quietLogger())

	asset, err := svc.Logo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fakePNG, asset.Body)
	assert.Equal(t, "image/png", asset.ContentType)

	again, err := svc.Logo(context.Background())
	require.NoError(t, err)
	assert.Same(t, asset, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second call is served from memory")
}

func TestAssetService_DetectsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write(fakePNG)
	}))
	defer srv.Close()

	asset, err := NewAssetService(srv.URL, time.Second, quietLogger()).Logo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "image/png", asset.ContentType)
}

func TestAssetService_NotFound(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	svc := NewAssetService(srv.URL+"/missing.png", time.Second, quietLogger())

	_, err := svc.Logo(context.Background())
	var assetErr *domain.RemoteAssetError
	require.True(t, errors.As(err, &assetErr))
	assert.Equal(t, http.StatusNotFound, assetErr.Status)
	assert.Equal(t, srv.URL+"/missing.png", assetErr.URL)

	_, err = svc.Logo(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "failures are retried")
}

func TestAssetService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAssetService(url, 200*time.Millisecond, quietLogger()).Logo(context.Background())
	var assetErr *domain.RemoteAssetError
	require.True(t, errors.As(err, &assetErr))
	assert.Zero(t, assetErr.Status)
	assert.Error(t, assetErr.Err)
}
