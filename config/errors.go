package config

import "errors"

var (
	// ErrNoActiveEndpoint 非安全与安全端点同时被禁用
	ErrNoActiveEndpoint = errors.New("config: at least one endpoint (plaintext or secure) must be enabled")

	// ErrInvalidBindAddress 绑定地址无法解析
	ErrInvalidBindAddress = errors.New("config: invalid bind address")

	// ErrInvalidTuning 传输调优参数无效
	ErrInvalidTuning = errors.New("config: invalid transport tuning")

	// ErrInvalidSecurity 安全配置无效
	ErrInvalidSecurity = errors.New("config: invalid security configuration")

	// ErrUnsupportedFormat 不支持的配置文件格式
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
)
