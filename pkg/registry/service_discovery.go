package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
)

// ServiceDiscovery 基于etcd前缀查询的服务发现。
type ServiceDiscovery struct {
	client   *clientv3.Client
	services map[string][]string
	mutex    sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewServiceDiscovery 创建服务发现客户端
func NewServiceDiscovery(cfg config.ServiceRegistryConfig) (*ServiceDiscovery, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ServiceDiscovery{
		client:   client,
		services: make(map[string][]string),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// DiscoverService 拉取可用实例并缓存
func (sd *ServiceDiscovery) DiscoverService(serviceName string) ([]string, error) {
	key := fmt.Sprintf("%s/%s/", servicePrefix, serviceName)
	resp, err := sd.client.Get(sd.ctx, key, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to get service instances: %w", err)
	}

	addresses := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		addresses = append(addresses, string(kv.Value))
	}

	sd.mutex.Lock()
	sd.services[serviceName] = addresses
	sd.mutex.Unlock()

	return addresses, nil
}

// GetService 返回缓存的实例列表
func (sd *ServiceDiscovery) GetService(serviceName string) []string {
	sd.mutex.RLock()
	defer sd.mutex.RUnlock()
	return sd.services[serviceName]
}

// WatchService 订阅etcd变更并刷新缓存
func (sd *ServiceDiscovery) WatchService(serviceName string) {
	key := fmt.Sprintf("%s/%s/", servicePrefix, serviceName)
	watchCh := sd.client.Watch(sd.ctx, key, clientv3.WithPrefix())

	go func() {
		for {
			select {
			case <-sd.ctx.Done():
				return
			case resp := <-watchCh:
				for _, event := range resp.Events {
					switch event.Type {
					case clientv3.EventTypePut:
						logger.Infof("Service instance added key=%s addr=%s", string(event.Kv.Key), string(event.Kv.Value))
					case clientv3.EventTypeDelete:
						logger.Infof("Service instance removed key=%s", string(event.Kv.Key))
					}
				}
				if _, err := sd.DiscoverService(serviceName); err != nil {
					logger.Warnf("Failed to refresh service cache service=%s error=%v", serviceName, err)
				}
			}
		}
	}()
}

// Close 停止watch并关闭客户端
func (sd *ServiceDiscovery) Close() error {
	sd.cancel()
	return sd.client.Close()
}
