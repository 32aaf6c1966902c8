package service_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubealex/kubealex.eda/pkg/service"
)

func TestServer_HealthzAndMetrics(t *testing.T) {
	server := service.NewServer(zerolog.Nop(), ":0")
	require.NoError(t, server.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", server.Addr()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(fmt.Sprintf("http://%s/metrics", server.Addr()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	metricsBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Contains(t, string(metricsBody), "go_goroutines")
}

func TestServer_ShutdownIsGraceful(t *testing.T) {
	server := service.NewServer(zerolog.Nop(), ":0")
	require.NoError(t, server.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	_, err := http.Get(fmt.Sprintf("http://%s/healthz", server.Addr()))
	require.Error(t, err, "server should no longer accept connections")
}
