package dto

// ClusterPeersDto 同名服务实例列表
type ClusterPeersDto struct {
	Enabled     bool     `json:"enabled"`
	ServiceName string   `json:"serviceName"`
	Peers       []string `json:"peers"`
}
