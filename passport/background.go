package passport

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chaos-io/passport-photo/compositor"
)

var (
	ErrInvalidPreset = errors.New("invalid background preset")
	ErrInvalidColor  = errors.New("invalid color")
)

// Preset 背景预设
type Preset string

const (
	White       Preset = "white"
	Black       Preset = "black"
	LightBlue   Preset = "light_blue"
	Transparent Preset = "transparent"
	Custom      Preset = "custom"
)

// DefaultCustomColor 自定义颜色选择器的初始值
const DefaultCustomColor = "#bfefff"

type PresetInfo struct {
	Name  Preset `json:"name"`
	Label string `json:"label"`
	// Color 固定颜色的十六进制值，Transparent 与 Custom 为空
	Color string `json:"color,omitempty"`
}

var presetColors = map[Preset]compositor.RGB{
	White:     {R: 255, G: 255, B: 255},
	Black:     {R: 0, G: 0, B: 0},
	LightBlue: {R: 173, G: 216, B: 230},
}

var presets = []PresetInfo{
	{Name: White, Label: "White", Color: "#ffffff"},
	{Name: Black, Label: "Black", Color: "#000000"},
	{Name: LightBlue, Label: "Light Blue", Color: "#add8e6"},
	{Name: Transparent, Label: "Transparent"},
	{Name: Custom, Label: "Custom"},
}

// Presets 按界面展示顺序返回全部预设
func Presets() []PresetInfo {
	out := make([]PresetInfo, len(presets))
	copy(out, presets)
	return out
}

// ParsePreset 大小写不敏感，空格和连字符视为下划线，如 "Light Blue"
func ParsePreset(name string) (Preset, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)

	switch p := Preset(n); p {
	case White, Black, LightBlue, Transparent, Custom:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPreset, name)
	}
}

// ParseHexColor 解析 #rrggbb、rrggbb 或 #rgb
func ParseHexColor(s string) (compositor.RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return compositor.RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var ch [3]int
	for i := range ch {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return compositor.RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		ch[i] = int(v)
	}
	return compositor.RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// PolicyFor 预设 + 自定义颜色 -> 输出策略；Custom 未给颜色时使用 DefaultCustomColor
func PolicyFor(preset Preset, customHex string) (compositor.Policy, error) {
	switch preset {
	case Transparent:
		return compositor.Transparent(), nil
	case Custom:
		if customHex == "" {
			customHex = DefaultCustomColor
		}
		c, err := ParseHexColor(customHex)
		if err != nil {
			return compositor.Policy{}, err
		}
		return compositor.SolidColor(c.R, c.G, c.B), nil
	default:
		c, ok := presetColors[preset]
		if !ok {
			return compositor.Policy{}, fmt.Errorf("%w: %q", ErrInvalidPreset, preset)
		}
		return compositor.SolidColor(c.R, c.G, c.B), nil
	}
}
