package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline/pkg/config"
)

type fakePeerSource struct {
	peers       []string
	cached      []string
	discoverErr error
}

func (f *fakePeerSource) DiscoverService(_ string) ([]string, error) {
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	return f.peers, nil
}

func (f *fakePeerSource) GetService(_ string) []string {
	return f.cached
}

func TestGetPeersDisabledRegistry(t *testing.T) {
	cfg := &config.Config{}
	cfg.ServiceRegistry.ServiceName = "video-pipeline"

	clusterApp := NewClusterAppWith(cfg, &fakePeerSource{peers: []string{"10.0.0.1:8080"}})
	result, err := clusterApp.GetPeers(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Enabled)
	assert.Empty(t, result.Peers)
}

func TestGetPeersReturnsInstances(t *testing.T) {
	cfg := &config.Config{}
	cfg.ServiceRegistry.Enabled = true
	cfg.ServiceRegistry.ServiceName = "video-pipeline"

	source := &fakePeerSource{peers: []string{"10.0.0.1:8080", "10.0.0.2:8080"}}
	clusterApp := NewClusterAppWith(cfg, source)

	result, err := clusterApp.GetPeers(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Enabled)
	assert.Equal(t, "video-pipeline", result.ServiceName)
	assert.Equal(t, []string{"10.0.0.1:8080", "10.0.0.2:8080"}, result.Peers)
}

func TestGetPeersFallsBackToCache(t *testing.T) {
	cfg := &config.Config{}
	cfg.ServiceRegistry.Enabled = true
	cfg.ServiceRegistry.ServiceName = "video-pipeline"

	source := &fakePeerSource{
		discoverErr: errors.New("etcd unavailable"),
		cached:      []string{"10.0.0.3:8080"},
	}
	clusterApp := NewClusterAppWith(cfg, source)

	result, err := clusterApp.GetPeers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.3:8080"}, result.Peers)
}
