package rembg

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chaos-io/passport-photo/config"
	"github.com/chaos-io/passport-photo/util"
	nhttp "github.com/chaos-io/passport-photo/util/http"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Status string

const (
	StatusDisabled Status = "disabled"
	StatusUnknown  Status = "unknown"
	StatusUp       Status = "up"
	StatusDown     Status = "down"
)

const healthTimeout = 5 * time.Second

// HealthChecker 按 cron 表达式定时探测抠图服务，保存最近一次结果。
// nil 的 HealthChecker 返回 StatusDisabled。
type HealthChecker struct {
	url    string
	cli    nhttp.IClient
	status atomic.Value
	cron   *cron.Cron
}

func NewHealthChecker(cfg *config.RembgConfig, cli nhttp.IClient) *HealthChecker {
	h := &HealthChecker{
		url: strings.TrimRight(cfg.BaseURL, "/") + cfg.HealthPath,
		cli: cli,
	}
	h.status.Store(StatusUnknown)
	return h
}

// Check 立即探测一次
func (h *HealthChecker) Check(ctx context.Context) Status {
	err := h.cli.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI: h.url,
		Method:     "GET",
		Timeout:    healthTimeout,
	})

	status := StatusUp
	if err != nil {
		status = StatusDown
	}

	prev := h.status.Swap(status).(Status)
	if prev != status {
		if err != nil {
			util.Logger.Warn("segmenter status changed",
				zap.String("url", h.url),
				zap.String("from", string(prev)),
				zap.String("to", string(status)),
				zap.Error(err))
		} else {
			util.Logger.Info("segmenter status changed",
				zap.String("url", h.url),
				zap.String("from", string(prev)),
				zap.String("to", string(status)))
		}
	}
	return status
}

// Start 先异步探测一次，再按 spec 定时探测
func (h *HealthChecker) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		h.Check(context.Background())
	}); err != nil {
		return err
	}
	h.cron = c
	c.Start()

	go h.Check(context.Background())
	return nil
}

// Stop 停止定时任务并等待正在执行的探测结束
func (h *HealthChecker) Stop() {
	if h == nil || h.cron == nil {
		return
	}
	<-h.cron.Stop().Done()
}

func (h *HealthChecker) Status() Status {
	if h == nil {
		return StatusDisabled
	}
	return h.status.Load().(Status)
}
