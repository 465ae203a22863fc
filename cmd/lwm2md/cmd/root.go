// Package cmd 实现 lwm2md 命令行
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// 全局标志
var (
	cfgFile  string
	logLevel string
	carrier  string

	plaintextAddr string
	secureAddr    string
	noPlaintext   bool
	noSecure      bool

	pskIdentity string
	pskKey      string
	certFile    string
	keyFile     string
	caFiles     []string
	rawKey      bool
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo 设置构建信息
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("lwm2md version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "lwm2md",
	Short: "lwm2md runs a LwM2M server or client endpoint pair",
	Long: "lwm2md binds a plaintext and a secure CoAP endpoint (UDP/DTLS, TCP/TLS or QUIC)\n" +
		"and logs the resolved peer identity of every inbound exchange.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file path (.json, .yaml, .yml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&carrier, "carrier", "", "transport carrier: udp, tcp or quic (overrides config)")

	pf.StringVar(&plaintextAddr, "plaintext-addr", "", "plaintext endpoint bind address")
	pf.StringVar(&secureAddr, "secure-addr", "", "secure endpoint bind address")
	pf.BoolVar(&noPlaintext, "no-plaintext", false, "disable the plaintext endpoint")
	pf.BoolVar(&noSecure, "no-secure", false, "disable the secure endpoint")

	pf.StringVar(&pskIdentity, "psk-identity", "", "PSK identity")
	pf.StringVar(&pskKey, "psk-key", "", "PSK key (hex)")
	pf.StringVar(&certFile, "cert", "", "certificate file (PEM)")
	pf.StringVar(&keyFile, "key", "", "private key file (PEM)")
	pf.StringSliceVar(&caFiles, "ca", nil, "trusted CA certificate files (PEM)")
	pf.BoolVar(&rawKey, "rpk", false, "authenticate with the raw public key of --cert")

	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("lwm2md version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

// Execute 运行根命令
func Execute() error {
	return rootCmd.Execute()
}
