// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义：
//   - Endpoint: 端点绑定（载体、地址、启用开关）
//   - Security: 安全端点的密钥材料
//   - Tuning:   传输调优参数（原样传给连接器）
//   - Client:   客户端角色的端点名与对象集合
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Endpoint = cfg.Endpoint.WithCarrier(types.CarrierTCP).WithSecure(false)
//
//	// 从文件加载（.json / .yaml / .yml）
//	cfg, err := config.Load("lwm2m.yaml")
package config

// Config 完整配置
type Config struct {
	// Endpoint 端点绑定配置
	Endpoint EndpointConfig `json:"endpoint" yaml:"endpoint"`

	// Security 安全配置
	Security SecurityConfig `json:"security,omitempty" yaml:"security,omitempty"`

	// Tuning 传输调优参数
	Tuning TuningConfig `json:"tuning,omitempty" yaml:"tuning,omitempty"`

	// Client 客户端配置，服务端忽略
	Client ClientConfig `json:"client,omitempty" yaml:"client,omitempty"`
}

// NewConfig 创建默认配置
//
// 调优参数保持零值，由端点引导时按角色填充默认值。
func NewConfig() *Config {
	return &Config{
		Endpoint: DefaultEndpointConfig(),
		Security: DefaultSecurityConfig(),
		Client:   DefaultClientConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.Endpoint.Validate(); err != nil {
		return err
	}
	if err := c.Security.Validate(); err != nil {
		return err
	}
	if err := c.Tuning.Validate(); err != nil {
		return err
	}
	return nil
}
