// Package imageio 负责上传图片的解码，以及 PNG / JPEG 结果的编码。
package imageio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecode            = errors.New("decode image")
	ErrTooManyPixels     = errors.New("image has too many pixels")
)

const (
	DefaultJPEGQuality = 100
	DefaultDPI         = 300
	// DefaultMaxPixels 约 40MP
	DefaultMaxPixels = 40_000_000
)

// Options 编解码参数
type Options struct {
	JPEGQuality int
	DPI         int
	// AutoOrient 按 EXIF Orientation 旋转 JPEG
	AutoOrient bool
}

func DefaultOptions() Options {
	return Options{
		JPEGQuality: DefaultJPEGQuality,
		DPI:         DefaultDPI,
	}
}

// Decode 只接受 JPEG / PNG；maxPixels > 0 时先按文件头里的尺寸拒绝过大的图片，
// 不做像素解码
func Decode(data []byte, autoOrient bool, maxPixels int64) (image.Image, Format, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	format := Format(name)
	if format != JPEG && format != PNG {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(autoOrient))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// EncodePNG 无损编码，透明输出使用
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG 按指定质量编码，并写入携带 dpi 的 JFIF APP0 段
func EncodeJPEG(img image.Image, quality, dpi int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("encode jpeg: quality %d out of range [1,100]", quality)
	}
	if dpi < 1 || dpi > 0xffff {
		return nil, fmt.Errorf("encode jpeg: dpi %d out of range", dpi)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return withJFIF(buf.Bytes(), uint16(dpi))
}

// withJFIF 在 SOI 之后插入 APP0:
//
//	FFE0 len(16) "JFIF\0" v1.01 units=1(dpi) Xdensity Ydensity 0x0 thumbnail
func withJFIF(data []byte, dpi uint16) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		return nil, errors.New("encode jpeg: missing SOI marker")
	}

	app0 := make([]byte, 18)
	app0[0], app0[1] = 0xff, 0xe0
	binary.BigEndian.PutUint16(app0[2:], 16)
	copy(app0[4:], "JFIF\x00")
	app0[9], app0[10] = 1, 1
	app0[11] = 1
	binary.BigEndian.PutUint16(app0[12:], dpi)
	binary.BigEndian.PutUint16(app0[14:], dpi)

	out := make([]byte, 0, len(data)+len(app0))
	out = append(out, data[:2]...)
	out = append(out, app0...)
	out = append(out, data[2:]...)
	return out, nil
}

// Encoder 按输出是否透明选择编码格式
type Encoder struct {
	opts Options
}

func NewEncoder(opts Options) *Encoder {
	return &Encoder{opts: opts}
}

// Encode 透明输出为 PNG，不透明输出为 JPEG
func (e *Encoder) Encode(img image.Image, transparent bool) ([]byte, Format, error) {
	if transparent {
		data, err := EncodePNG(img)
		return data, PNG, err
	}
	data, err := EncodeJPEG(img, e.opts.JPEGQuality, e.opts.DPI)
	return data, JPEG, err
}

func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Ext 下载文件扩展名
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}
