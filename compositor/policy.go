package compositor

import (
	"fmt"
	"image/color"
)

// RGB 背景色，通道用 int 保存以便校验越界输入
type RGB struct {
	R, G, B int
}

func (c RGB) Valid() bool {
	return inRange(c.R) && inRange(c.G) && inRange(c.B)
}

// Color 转为不透明的 color.RGBA，调用前需保证 Valid
func (c RGB) Color() color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

func inRange(v int) bool {
	return v >= 0 && v <= 255
}

// Policy 输出策略：保留透明，或者合成到纯色背景上。
// 零值等价于 SolidColor(0, 0, 0)。
type Policy struct {
	transparent bool
	bg          RGB
}

func Transparent() Policy {
	return Policy{transparent: true}
}

func SolidColor(r, g, b int) Policy {
	return Policy{bg: RGB{R: r, G: g, B: b}}
}

func (p Policy) IsTransparent() bool {
	return p.transparent
}

// Background 返回背景色；透明策略下 ok 为 false
func (p Policy) Background() (bg RGB, ok bool) {
	if p.transparent {
		return RGB{}, false
	}
	return p.bg, true
}

func (p Policy) Validate() error {
	if p.transparent {
		return nil
	}
	if !p.bg.Valid() {
		return fmt.Errorf("%w: background %s out of range [0,255]", ErrInvalidPolicy, p.bg)
	}
	return nil
}

func (p Policy) String() string {
	if p.transparent {
		return "transparent"
	}
	return p.bg.String()
}

// Canvas 纯色输出的目标画布尺寸
type Canvas struct {
	Width  int
	Height int
}

// DefaultCanvas 证件照默认输出 1200x1200
var DefaultCanvas = Canvas{Width: 1200, Height: 1200}

func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidCanvas, c.Width, c.Height)
	}
	return nil
}
