package types

import (
	"fmt"
	"time"
)

// ObjectID LwM2M 对象 ID
type ObjectID uint16

// 核心对象 ID
const (
	SecurityObjectID ObjectID = 0
	ServerObjectID   ObjectID = 1
	DeviceObjectID   ObjectID = 3
)

// 默认 LwM2M 端口
const (
	// DefaultCoAPPort CoAP 默认端口（UDP/TCP）
	DefaultCoAPPort uint16 = 5683
	// DefaultCoAPSPort CoAP over DTLS 默认端口
	DefaultCoAPSPort uint16 = 5684
	// DefaultTLSPort CoAP over TLS 默认端口
	DefaultTLSPort uint16 = 5689
)

// SecurityInstance Security 对象（/0）实例
//
// 描述客户端如何向某个 LwM2M 服务器（或 Bootstrap 服务器）认证自己。
type SecurityInstance struct {
	ServerURI       string       `json:"server_uri" yaml:"server_uri"`
	BootstrapServer bool         `json:"bootstrap_server" yaml:"bootstrap_server"`
	Mode            SecurityMode `json:"mode" yaml:"mode"`
	PSKIdentity     string       `json:"psk_identity,omitempty" yaml:"psk_identity,omitempty"`
	ShortServerID   uint16       `json:"short_server_id" yaml:"short_server_id"`
}

// ServerInstance Server 对象（/1）实例
type ServerInstance struct {
	ShortServerID uint16        `json:"short_server_id" yaml:"short_server_id"`
	Lifetime      time.Duration `json:"lifetime" yaml:"lifetime"`
	Binding       string        `json:"binding" yaml:"binding"`
	NotifyStoring bool          `json:"notify_storing" yaml:"notify_storing"`
}

// DeviceInstance Device 对象（/3）实例
type DeviceInstance struct {
	Manufacturer      string `json:"manufacturer" yaml:"manufacturer"`
	ModelNumber       string `json:"model_number" yaml:"model_number"`
	SerialNumber      string `json:"serial_number" yaml:"serial_number"`
	SupportedBindings string `json:"supported_bindings" yaml:"supported_bindings"`
}

// ObjectSet 客户端暴露的对象集合
type ObjectSet struct {
	Security []SecurityInstance `json:"security,omitempty" yaml:"security,omitempty"`
	Server   []ServerInstance   `json:"server,omitempty" yaml:"server,omitempty"`
	Device   *DeviceInstance    `json:"device,omitempty" yaml:"device,omitempty"`
}

// Has 对象是否至少有一个实例
func (s *ObjectSet) Has(id ObjectID) bool {
	if s == nil {
		return false
	}
	switch id {
	case SecurityObjectID:
		return len(s.Security) > 0
	case ServerObjectID:
		return len(s.Server) > 0
	case DeviceObjectID:
		return s.Device != nil
	default:
		return false
	}
}

// DefaultShortServerID 默认短服务器 ID
const DefaultShortServerID uint16 = 12345

// DefaultClientObjects 返回客户端默认对象集合（UDP 载体）
//
//   - Security(0): coap://localhost:5683，NoSec，短服务器 ID 12345
//   - Server(1):   短服务器 ID 12345，生命周期 5 分钟，绑定 U
//   - Device(3):   厂商/型号/序列号占位值
func DefaultClientObjects() *ObjectSet {
	return DefaultClientObjectsFor("coap")
}

// DefaultClientObjectsFor 返回指定 URI scheme 的默认对象集合
//
// Security 对象指向 <scheme>://localhost:5683，例如 TCP 载体为 coap+tcp。
func DefaultClientObjectsFor(scheme string) *ObjectSet {
	if scheme == "" {
		scheme = "coap"
	}
	return &ObjectSet{
		Security: []SecurityInstance{{
			ServerURI:     fmt.Sprintf("%s://localhost:%d", scheme, DefaultCoAPPort),
			Mode:          SecurityModeNoSec,
			ShortServerID: DefaultShortServerID,
		}},
		Server: []ServerInstance{{
			ShortServerID: DefaultShortServerID,
			Lifetime:      5 * time.Minute,
			Binding:       "U",
		}},
		Device: &DeviceInstance{
			Manufacturer:      "Leshan Go",
			ModelNumber:       "model12345",
			SerialNumber:      "12345",
			SupportedBindings: "U",
		},
	}
}
