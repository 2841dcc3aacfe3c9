// Package rembg 封装抠图服务：给定图像，返回背景 alpha 置 0 的 RGBA 图像。
package rembg

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/chaos-io/passport-photo/config"
)

// ErrSegmentation 抠图服务调用失败，整个请求失败
var ErrSegmentation = errors.New("segmentation failed")

//go:generate mockgen -destination=mocks/rembg.go -package=mocks . Remover
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// DefaultRemBG 不做任何处理，原样返回
type DefaultRemBG struct{}

func NewDefaultRemBG() *DefaultRemBG {
	return &DefaultRemBG{}
}

func (d *DefaultRemBG) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

// New 按配置创建 Remover
func New(cfg *config.RembgConfig) (Remover, error) {
	switch cfg.Backend {
	case config.BackendServer:
		return NewServerRemover(cfg), nil
	case config.BackendPassthrough, "":
		return NewDefaultRemBG(), nil
	default:
		return nil, fmt.Errorf("unknown rembg backend %q", cfg.Backend)
	}
}
