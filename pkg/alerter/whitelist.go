package alerter

import (
	"net"
	"strings"
	"sync"

	"go-snortalert/pkg/logger"
)

// Whitelist 源IP白名单，支持单个IP和CIDR
type Whitelist struct {
	nets []*net.IPNet
	mu   sync.RWMutex
}

func NewWhitelist(ips []string) *Whitelist {
	w := &Whitelist{
		nets: make([]*net.IPNet, 0),
	}
	if len(ips) > 0 {
		w.Update(ips)
	}
	return w
}

func (w *Whitelist) Update(ips []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nets = make([]*net.IPNet, 0, len(ips))

	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		// 单个IP按 /32 处理
		if !strings.Contains(ip, "/") {
			ip += "/32"
		}

		_, ipnet, err := net.ParseCIDR(ip)
		if err != nil {
			logger.Log.Errorf("无效的CIDR格式: %s, 错误: %v", ip, err)
			continue
		}
		w.nets = append(w.nets, ipnet)
	}

	logger.Log.Infof("白名单更新完成，共 %d 条记录", len(w.nets))
}

func (w *Whitelist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.nets)
}

func (w *Whitelist) ContainsIP(ipStr string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if len(w.nets) == 0 {
		return false
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		logger.Log.Warnf("无效的IP地址: %s", ipStr)
		return false
	}

	for _, ipnet := range w.nets {
		if ipnet.Contains(ip) {
			return true
		}
	}
	return false
}
