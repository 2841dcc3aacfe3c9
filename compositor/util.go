package compositor

import (
	"image"

	"golang.org/x/image/draw"
)

// ToNRGBA 转为 NRGBA（非预乘 alpha），已是 NRGBA 时原样返回
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// HasUsefulAlpha 检查 alpha 通道是否真的包含透明信息
// 只要存在非 255 的像素，就认为已经抠过图
func HasUsefulAlpha(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for i := row + 3; i < row+b.Dx()*4; i += 4 {
			if img.Pix[i] != 0xff {
				return true
			}
		}
	}
	return false
}
