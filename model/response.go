package model

import "github.com/chaos-io/passport-photo/passport"

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// PresetsResponse 背景预设列表
type PresetsResponse struct {
	Success      bool                  `json:"success"`
	Presets      []passport.PresetInfo `json:"presets"`
	DefaultColor string                `json:"default_color"`
	Canvas       Size                  `json:"canvas"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HealthResponse 健康检查
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Segmenter string `json:"segmenter"`
}

// VersionResponse 构建信息
type VersionResponse struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GitBranch string `json:"git_branch"`
}
