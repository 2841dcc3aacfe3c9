package rembg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"strings"
	"time"

	"github.com/chaos-io/passport-photo/compositor"
	"github.com/chaos-io/passport-photo/config"
	"github.com/chaos-io/passport-photo/imageio"
	"github.com/chaos-io/passport-photo/util"
	nhttp "github.com/chaos-io/passport-photo/util/http"
	"go.uber.org/zap"
)

const removePath = "/api/remove"

// ServerRemover 调用 rembg HTTP 服务 (rembg s) 抠图
type ServerRemover struct {
	baseURL string
	model   string
	timeout time.Duration
	cli     nhttp.IClient
}

func NewServerRemover(cfg *config.RembgConfig) *ServerRemover {
	return NewServerRemoverWithClient(cfg, nhttp.NewHTTPClientWithTimeout(cfg.Timeout))
}

func NewServerRemoverWithClient(cfg *config.RembgConfig, cli nhttp.IClient) *ServerRemover {
	return &ServerRemover{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		cli:     cli,
	}
}

/*
	curl -X POST "$BASE_URL/api/remove" \
	  -F "file=@photo.png" \
	  -F "model=u2net" \
	  -o cutout.png
*/
func (s *ServerRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	body, contentType, err := s.buildForm(img)
	if err != nil {
		return nil, err
	}

	var out []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: s.baseURL + removePath,
		Method:     "POST",
		Header: map[string]string{
			"Content-Type": contentType,
			"Accept":       "image/png",
		},
		Body:     body,
		Response: &out,
		Timeout:  s.timeout,
	}
	if err := s.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSegmentation, err)
	}

	cutout, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrSegmentation, err)
	}
	if cutout.Bounds().Size() != img.Bounds().Size() {
		return nil, fmt.Errorf("%w: response size %v, want %v",
			ErrSegmentation, cutout.Bounds().Size(), img.Bounds().Size())
	}

	util.Logger.Debug("segmentation done",
		zap.String("model", s.model),
		zap.Int("response_bytes", len(out)))

	return compositor.ToNRGBA(cutout), nil
}

func (s *ServerRemover) buildForm(img image.Image) (*bytes.Buffer, string, error) {
	data, err := imageio.EncodePNG(img)
	if err != nil {
		return nil, "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if s.model != "" {
		if err := writer.WriteField("model", s.model); err != nil {
			return nil, "", fmt.Errorf("write model field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
