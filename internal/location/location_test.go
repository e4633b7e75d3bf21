package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alertaja/internal/config"
	"alertaja/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	granted    bool
	permErr    error
	coords     models.Coordinates
	posErr     error
	positioned bool
}

func (s *stubProvider) RequestPermission(ctx context.Context) (bool, error) {
	return s.granted, s.permErr
}

func (s *stubProvider) CurrentPosition(ctx context.Context, accuracy Accuracy) (models.Coordinates, error) {
	s.positioned = true
	return s.coords, s.posErr
}

func TestEnricher_Resolve(t *testing.T) {
	luanda := models.Coordinates{Latitude: -8.8383, Longitude: 13.2344}

	tests := []struct {
		name       string
		provider   *stubProvider
		want       *models.Coordinates
		positioned bool
	}{
		{"granted", &stubProvider{granted: true, coords: luanda}, &luanda, true},
		{"denied", &stubProvider{granted: false}, nil, false},
		{"permission error", &stubProvider{permErr: errors.New("bridge down")}, nil, false},
		{"position error", &stubProvider{granted: true, posErr: errors.New("no fix")}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnricher(tt.provider, zap.NewNop())
			got := e.Resolve(context.Background())
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.positioned, tt.provider.positioned)
		})
	}
}

func TestHTTPProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/location/permission":
			_, _ = w.Write([]byte(`{"granted":true}`))
		case r.Method == http.MethodGet && r.URL.Path == "/location/current":
			assert.Equal(t, "balanced", r.URL.Query().Get("accuracy"))
			_, _ = w.Write([]byte(`{"latitude":-8.81,"longitude":13.23}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, time.Second, zap.NewNop())
	ctx := context.Background()

	granted, err := p.RequestPermission(ctx)
	require.NoError(t, err)
	assert.True(t, granted)

	coords, err := p.CurrentPosition(ctx, AccuracyBalanced)
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: -8.81, Longitude: 13.23}, coords)
}

func TestHTTPProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewEnricher(NewHTTPProvider(srv.URL, time.Second, zap.NewNop()), zap.NewNop())
	assert.Nil(t, e.Resolve(context.Background()))
}

func TestHTTPProvider_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	p := NewHTTPProvider(srv.URL, 5*time.Second, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Nil(t, NewEnricher(p, zap.NewNop()).Resolve(ctx))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.LocationConfig{Provider: "static", Latitude: 1, Longitude: 2}, zap.NewNop())
	require.NoError(t, err)
	coords, err := p.CurrentPosition(context.Background(), AccuracyBalanced)
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: 1, Longitude: 2}, coords)

	p, err = NewProvider(config.LocationConfig{Provider: "none"}, zap.NewNop())
	require.NoError(t, err)
	granted, err := p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.False(t, granted)

	_, err = NewProvider(config.LocationConfig{Provider: "gps"}, zap.NewNop())
	assert.Error(t, err)
}
