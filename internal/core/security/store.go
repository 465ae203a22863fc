package security

import (
	"bytes"
	"fmt"
	"sync"

	securityif "github.com/artikcloud/leshan/pkg/interfaces/security"
)

// InMemoryPSKStore 内存 PSK 存储，并发安全
type InMemoryPSKStore struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// 确保实现接口
var _ securityif.PSKStore = (*InMemoryPSKStore)(nil)

// NewInMemoryPSKStore 创建内存 PSK 存储
func NewInMemoryPSKStore() *InMemoryPSKStore {
	return &InMemoryPSKStore{keys: make(map[string][]byte)}
}

// Add 添加或替换一个标识的密钥
func (s *InMemoryPSKStore) Add(identity string, key []byte) error {
	if identity == "" {
		return fmt.Errorf("%w: empty identity", ErrNoPSKIdentity)
	}
	if len(key) == 0 {
		return fmt.Errorf("%w: empty key for %q", ErrNoPSKIdentity, identity)
	}
	s.mu.Lock()
	s.keys[identity] = bytes.Clone(key)
	s.mu.Unlock()
	return nil
}

// Remove 删除一个标识
func (s *InMemoryPSKStore) Remove(identity string) {
	s.mu.Lock()
	delete(s.keys, identity)
	s.mu.Unlock()
}

// Key 返回标识对应的密钥副本
func (s *InMemoryPSKStore) Key(identity string) ([]byte, error) {
	s.mu.RLock()
	key, ok := s.keys[identity]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPSKIdentity, identity)
	}
	return bytes.Clone(key), nil
}

// Len 返回标识数量
func (s *InMemoryPSKStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
