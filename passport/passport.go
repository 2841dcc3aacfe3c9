// Package passport 把一次上传处理成可下载的证件照：
// 解码 -> 抠图 -> 合成 -> 编码。
package passport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/chaos-io/passport-photo/compositor"
	"github.com/chaos-io/passport-photo/config"
	"github.com/chaos-io/passport-photo/imageio"
	"github.com/chaos-io/passport-photo/rembg"
	"github.com/chaos-io/passport-photo/util"
	"go.uber.org/zap"
)

// ErrBusy 排队超时
var ErrBusy = errors.New("too many requests in progress")

// FileBaseName 下载文件名（不含扩展名）
const FileBaseName = "passport_photo"

// Request 一次请求的全部输入，处理过程中不修改
type Request struct {
	Image     []byte
	Preset    Preset
	CustomHex string
}

func (r Request) Policy() (compositor.Policy, error) {
	return PolicyFor(r.Preset, r.CustomHex)
}

// Result 编码后的结果
type Result struct {
	Data        []byte
	ContentType string
	Filename    string
	Width       int
	Height      int
}

type Service struct {
	remover      rembg.Remover
	encoder      *imageio.Encoder
	canvas       compositor.Canvas
	autoOrient   bool
	maxPixels    int64
	skipIfAlpha  bool
	semaphore    chan struct{}
	queueTimeout time.Duration
}

const defaultQueueTimeout = 30 * time.Second

func NewService(cfg *config.Config, remover rembg.Remover) *Service {
	queueTimeout := cfg.Pipeline.QueueTimeout
	if queueTimeout <= 0 {
		queueTimeout = defaultQueueTimeout
	}
	return &Service{
		remover: remover,
		encoder: imageio.NewEncoder(imageio.Options{
			JPEGQuality: cfg.Output.JPEGQuality,
			DPI:         cfg.Output.DPI,
			AutoOrient:  cfg.Output.AutoOrient,
		}),
		canvas:       compositor.Canvas{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height},
		autoOrient:   cfg.Output.AutoOrient,
		maxPixels:    cfg.Upload.MaxPixels,
		skipIfAlpha:  cfg.Rembg.SkipIfAlpha,
		semaphore:    make(chan struct{}, max(1, cfg.Pipeline.MaxConcurrent)),
		queueTimeout: queueTimeout,
	}
}

// Generate 处理一次请求，任一环节失败则整体失败
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	policy, err := req.Policy()
	if err != nil {
		return nil, err
	}

	img, format, err := imageio.Decode(req.Image, s.autoOrient, s.maxPixels)
	if err != nil {
		return nil, err
	}
	src := compositor.ToNRGBA(img)

	util.Logger.Info("generating passport photo",
		zap.String("format", string(format)),
		zap.Int("width", src.Bounds().Dx()),
		zap.Int("height", src.Bounds().Dy()),
		zap.Stringer("policy", policy))

	cutout, err := s.segment(ctx, src)
	if err != nil {
		return nil, err
	}

	done := util.Trace("composite", zap.Stringer("policy", policy))
	final, err := compositor.Composite(cutout, policy, s.canvas)
	done()
	if err != nil {
		return nil, err
	}

	done = util.Trace("encode")
	data, outFormat, err := s.encoder.Encode(final, policy.IsTransparent())
	done()
	if err != nil {
		return nil, err
	}

	b := final.Bounds()
	return &Result{
		Data:        data,
		ContentType: outFormat.ContentType(),
		Filename:    FileBaseName + "." + outFormat.Ext(),
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// segment 限制同时进行的抠图数量，排队超过 queueTimeout 返回 ErrBusy
func (s *Service) segment(ctx context.Context, src *image.NRGBA) (image.Image, error) {
	if s.skipIfAlpha && compositor.HasUsefulAlpha(src) {
		util.Logger.Info("upload already has alpha, skip segmentation")
		return src, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.queueTimeout)
	defer cancel()

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: waited %s", ErrBusy, s.queueTimeout)
	}

	defer util.Trace("segment")()
	return s.remover.Remove(ctx, src)
}
