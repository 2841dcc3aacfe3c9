package compositor

import "errors"

var (
	// ErrInvalidImage 输入图像宽或高为 0
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidPolicy 背景色通道超出 [0,255]
	ErrInvalidPolicy = errors.New("invalid output policy")
	// ErrInvalidCanvas 目标画布尺寸非正
	ErrInvalidCanvas = errors.New("invalid canvas")
)
