package app

import (
	"context"
	"sync"

	"video-pipeline/ddd/application/dto"
	"video-pipeline/pkg/assert"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
	"video-pipeline/pkg/registry"
)

var (
	singleClusterApp ClusterApp
	onceClusterApp   sync.Once
)

// ClusterApp 集群实例查询应用服务
type ClusterApp interface {
	// GetPeers 查询注册中心内同名服务的实例地址
	GetPeers(ctx context.Context) (*dto.ClusterPeersDto, error)
}

// PeerSource 服务发现查询口径，便于测试替换
type PeerSource interface {
	DiscoverService(serviceName string) ([]string, error)
	GetService(serviceName string) []string
}

type clusterAppImpl struct {
	cfg *config.Config

	mu        sync.Mutex
	discovery PeerSource
}

// DefaultClusterApp 获取集群应用服务单例
func DefaultClusterApp() ClusterApp {
	assert.NotCircular()
	onceClusterApp.Do(func() {
		singleClusterApp = NewClusterAppWith(config.GetGlobalConfig(), nil)
	})
	assert.NotNil(singleClusterApp)
	return singleClusterApp
}

// NewClusterAppWith 以显式依赖创建集群应用服务，discovery为nil时延迟到首次查询创建
func NewClusterAppWith(cfg *config.Config, discovery PeerSource) ClusterApp {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &clusterAppImpl{cfg: cfg, discovery: discovery}
}

// GetPeers 查询同名服务实例
func (a *clusterAppImpl) GetPeers(_ context.Context) (*dto.ClusterPeersDto, error) {
	name := a.cfg.ServiceRegistry.ServiceName
	result := &dto.ClusterPeersDto{ServiceName: name, Peers: []string{}}
	if !a.cfg.ServiceRegistry.Enabled {
		return result, nil
	}
	result.Enabled = true

	source, err := a.peerSource(name)
	if err != nil {
		return nil, err
	}

	peers, err := source.DiscoverService(name)
	if err != nil {
		// etcd短暂不可用时退回缓存
		logger.Warnf("Discover service failed service=%s error=%v", name, err)
		peers = source.GetService(name)
	}
	if peers != nil {
		result.Peers = peers
	}
	return result, nil
}

// peerSource 懒初始化服务发现客户端，watch保持缓存新鲜
func (a *clusterAppImpl) peerSource(serviceName string) (PeerSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.discovery != nil {
		return a.discovery, nil
	}

	sd, err := registry.NewServiceDiscovery(a.cfg.ServiceRegistry)
	if err != nil {
		return nil, err
	}
	sd.WatchService(serviceName)
	a.discovery = sd
	return sd, nil
}
