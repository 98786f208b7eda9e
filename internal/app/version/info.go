// Package version 构建版本信息，通过 ldflags 注入
package version

import (
	"fmt"
	"runtime"
	"time"
)

// 构建时注入：-ldflags "-X github.com/mavedefi/whitelist-dapp/internal/app/version.Version=v0.1.0"
var (
	Version   = "v0.1.0"
	Commit    = "unknown"
	BuildTime = "unknown" // RFC3339
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetBuildInfo 获取构建信息
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String 命令行 --version 输出
func (b BuildInfo) String() string {
	s := fmt.Sprintf("%s (commit %s)", b.Version, b.Commit)
	if b.BuildTime != "unknown" {
		if t, err := time.Parse(time.RFC3339, b.BuildTime); err == nil {
			s += fmt.Sprintf("\n构建时间: %s", t.Format("2006-01-02 15:04:05 MST"))
		} else {
			s += fmt.Sprintf("\n构建时间: %s", b.BuildTime)
		}
	}
	s += fmt.Sprintf("\nGo版本: %s\n平台: %s", b.GoVersion, b.Platform)
	return s
}
