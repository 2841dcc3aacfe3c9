package rembg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chaos-io/passport-photo/config"
	nhttp "github.com/chaos-io/passport-photo/util/http"
	"github.com/chaos-io/passport-photo/util/http/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestHealthChecker_Check(t *testing.T) {
	ctrl := gomock.NewController(t)
	cli := mocks.NewMockIClient(ctrl)

	h := NewHealthChecker(&config.RembgConfig{BaseURL: "http://rembg:7000/", HealthPath: "/api"}, cli)
	assert.Equal(t, StatusUnknown, h.Status())

	gomock.InOrder(
		cli.EXPECT().DoHTTPRequest(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, p *nhttp.RequestParam) error {
				assert.Equal(t, "http://rembg:7000/api", p.RequestURI)
				assert.Equal(t, "GET", p.Method)
				return nil
			}),
		cli.EXPECT().DoHTTPRequest(gomock.Any(), gomock.Any()).Return(errors.New("connection refused")),
	)

	assert.Equal(t, StatusUp, h.Check(context.Background()))
	assert.Equal(t, StatusUp, h.Status())

	assert.Equal(t, StatusDown, h.Check(context.Background()))
	assert.Equal(t, StatusDown, h.Status())
}

func TestHealthChecker_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	cli := mocks.NewMockIClient(ctrl)
	cli.EXPECT().DoHTTPRequest(gomock.Any(), gomock.Any()).Return(nil).MinTimes(1)

	h := NewHealthChecker(&config.RembgConfig{BaseURL: "http://rembg:7000", HealthPath: "/api"}, cli)
	assert.NoError(t, h.Start("@every 1h"))

	assert.Eventually(t, func() bool {
		return h.Status() == StatusUp
	}, time.Second, 10*time.Millisecond)

	h.Stop()
}

func TestHealthChecker_InvalidSpec(t *testing.T) {
	h := NewHealthChecker(&config.RembgConfig{BaseURL: "http://rembg:7000"}, nil)
	assert.Error(t, h.Start("not a cron spec"))
	h.Stop()
}

func TestHealthChecker_Nil(t *testing.T) {
	var h *HealthChecker
	assert.Equal(t, StatusDisabled, h.Status())
	h.Stop()
}
