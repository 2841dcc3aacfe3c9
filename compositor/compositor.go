// Package compositor 把抠图结果合成到纯色背景上，并缩放、填充到固定画布。
package compositor

import (
	"fmt"
	"image"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Composite 按策略生成最终图像
//
//	Transparent: 原样返回 img（保留 alpha，不缩放不填充）
//	SolidColor:  alpha 混合到背景色，去掉 alpha，再等比缩放并居中填充到 canvas
func Composite(img image.Image, policy Policy, canvas Canvas) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidImage, b.Dx(), b.Dy())
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	bg, ok := policy.Background()
	if !ok {
		return img, nil
	}
	if err := canvas.Validate(); err != nil {
		return nil, err
	}

	flat := Blend(ToNRGBA(img), bg)
	return ResizeWithPadding(flat, canvas, bg), nil
}

// Blend 逐像素 out = a*src + (1-a)*bg，a = alpha/255，结果按 uint8 截断，alpha 固定为 255
func Blend(img *image.NRGBA, bg RGB) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	bgc := [3]float64{float64(bg.R), float64(bg.G), float64(bg.B)}

	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			a := float64(src[i+3]) / 255.0
			for c := 0; c < 3; c++ {
				dst[i+c] = uint8(a*float64(src[i+c]) + (1-a)*bgc[c])
			}
			dst[i+3] = 0xff
		}
	}
	return out
}

// ResizeWithPadding 等比缩放（Lanczos3）后居中贴到填满 bg 的 canvas 上
func ResizeWithPadding(img image.Image, canvas Canvas, bg RGB) *image.RGBA {
	b := img.Bounds()
	nw, nh := FitSize(b.Dx(), b.Dy(), canvas)

	resized := resize.Resize(uint(nw), uint(nh), img, resize.Lanczos3)

	dst := image.NewRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg.Color()), image.Point{}, draw.Src)

	offset := image.Pt((canvas.Width-nw)/2, (canvas.Height-nh)/2)
	r := image.Rectangle{Min: offset, Max: offset.Add(image.Pt(nw, nh))}
	draw.Draw(dst, r, resized, resized.Bounds().Min, draw.Src)
	return dst
}

// FitSize 计算放入 canvas 的缩放尺寸，int 截断；极端长宽比下每边至少 1 像素
func FitSize(w, h int, canvas Canvas) (int, int) {
	ratio := math.Min(float64(canvas.Width)/float64(w), float64(canvas.Height)/float64(h))
	nw := max(1, int(float64(w)*ratio))
	nh := max(1, int(float64(h)*ratio))
	return nw, nh
}
