package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/infrastructure/config"
	"onchain-budget-assistant/internal/infrastructure/logger"
)

const testAddress = "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"

func testClient(baseURL string) gateway.IdentityGateway {
	return NewENSClient(
		&config.IdentityConfig{BaseURL: baseURL, Timeout: 2 * time.Second},
		&logger.Logger{Logger: zap.NewNop()},
	)
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ens/resolve/"+testAddress, r.URL.Path)
		w.Write([]byte(`{"address":"` + testAddress + `","name":"vitalik.eth","avatar":"https://example.com/a.png","description":"builder"}`))
	}))
	defer srv.Close()

	profile, err := testClient(srv.URL).GetProfile(context.Background(), testAddress)
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, "vitalik.eth", profile.Name)
	assert.Equal(t, testAddress, profile.Address)
	assert.Equal(t, "builder", profile.Description)
}

func TestGetProfileNoName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":"` + testAddress + `","name":""}`))
	}))
	defer srv.Close()

	profile, err := testClient(srv.URL).GetProfile(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestGetProfileNotFoundIsAbsence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	profile, err := testClient(srv.URL).GetProfile(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestGetProfileInvalidAddress(t *testing.T) {
	_, err := testClient("http://unused").GetProfile(context.Background(), "vitalik.eth")

	var validationErr *gateway.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestGetProfileUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetProfile(context.Background(), testAddress)

	var upstreamErr *gateway.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.Status)
}
