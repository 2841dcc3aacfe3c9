package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chaos-io/passport-photo/compositor"
	"github.com/chaos-io/passport-photo/config"
	"github.com/chaos-io/passport-photo/imageio"
	"github.com/chaos-io/passport-photo/middleware"
	"github.com/chaos-io/passport-photo/model"
	"github.com/chaos-io/passport-photo/passport"
	"github.com/chaos-io/passport-photo/rembg"
	"github.com/chaos-io/passport-photo/util"
	"github.com/chaos-io/passport-photo/web"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead 请求体上限 = 文件上限 + 表单开销
const multipartOverhead = 1 << 20

type PassportHandler struct {
	cfg     *config.Config
	service *passport.Service
}

func NewPassportHandler(cfg *config.Config, service *passport.Service) *PassportHandler {
	return &PassportHandler{
		cfg:     cfg,
		service: service,
	}
}

// Index 页面
func (h *PassportHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.Index)
}

// Presets 背景预设
func (h *PassportHandler) Presets(c *gin.Context) {
	c.JSON(http.StatusOK, model.PresetsResponse{
		Success:      true,
		Presets:      passport.Presets(),
		DefaultColor: passport.DefaultCustomColor,
		Canvas:       model.Size{Width: h.cfg.Canvas.Width, Height: h.cfg.Canvas.Height},
	})
}

// Generate 上传图片并返回可下载的证件照
//
//	image:      jpg/jpeg/png 文件
//	background: white | black | light_blue | transparent | custom，默认 white
//	color:      custom 时的十六进制颜色
func (h *PassportHandler) Generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Upload.MaxSize+multipartOverhead)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, fmt.Errorf("%w: %v", util.ErrFileTooLarge, err))
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "please upload an image file",
			Error:   err.Error(),
		})
		return
	}

	if !util.ContainsFold(h.cfg.Upload.AllowedExts, util.FileExt(file.Filename)) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "unsupported file type, only JPG/JPEG/PNG are accepted",
		})
		return
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" &&
		!util.ContainsFold(h.cfg.Upload.AllowedTypes, ct) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "unsupported file type, only JPG/JPEG/PNG are accepted",
		})
		return
	}

	data, err := util.ReadUploadedFile(file, h.cfg.Upload.MaxSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	preset, err := passport.ParsePreset(c.DefaultPostForm("background", string(passport.White)))
	if err != nil {
		h.fail(c, err)
		return
	}

	util.Logger.Info("file uploaded",
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
		zap.String("background", string(preset)))

	result, err := h.service.Generate(c.Request.Context(), passport.Request{
		Image:     data,
		Preset:    preset,
		CustomHex: c.PostForm("color"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	c.Header("X-Image-Width", strconv.Itoa(result.Width))
	c.Header("X-Image-Height", strconv.Itoa(result.Height))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *PassportHandler) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		util.Logger.Error("failed to generate passport photo",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Int("status", status),
			zap.Error(err))
	} else {
		util.Logger.Warn("rejected request",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Int("status", status),
			zap.Error(err))
	}
	_ = c.Error(err)

	c.JSON(status, model.ErrorResponse{
		Success: false,
		Message: msg,
		Error:   err.Error(),
	})
}

// statusFor 错误 -> HTTP 状态码和提示
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, util.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "file is too large"
	case errors.Is(err, passport.ErrInvalidPreset),
		errors.Is(err, passport.ErrInvalidColor),
		errors.Is(err, compositor.ErrInvalidPolicy):
		return http.StatusBadRequest, "invalid background choice"
	case errors.Is(err, imageio.ErrUnsupportedFormat),
		errors.Is(err, imageio.ErrDecode),
		errors.Is(err, imageio.ErrTooManyPixels),
		errors.Is(err, compositor.ErrInvalidImage):
		return http.StatusBadRequest, "the uploaded file is not a valid JPG/PNG image"
	case errors.Is(err, passport.ErrBusy):
		return http.StatusServiceUnavailable, "the server is busy, please try again later"
	case errors.Is(err, rembg.ErrSegmentation):
		return http.StatusBadGateway, "background removal failed"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "processing timed out"
	default:
		return http.StatusInternalServerError, "failed to generate the passport photo"
	}
}
