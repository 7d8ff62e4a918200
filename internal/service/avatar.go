package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

// AvatarSize 是饮品头像的尺寸档位。
type AvatarSize string

const (
	AvatarSmall  AvatarSize = "sm"
	AvatarMedium AvatarSize = "md"
	AvatarLarge  AvatarSize = "lg"
)

// ParseAvatarSize 解析尺寸档位，未知值回退为 md。
func ParseAvatarSize(value string) AvatarSize {
	switch AvatarSize(strings.ToLower(strings.TrimSpace(value))) {
	case AvatarSmall:
		return AvatarSmall
	case AvatarLarge:
		return AvatarLarge
	default:
		return AvatarMedium
	}
}

// Dimensions 返回该档位的像素宽高。
func (s AvatarSize) Dimensions() (int, int) {
	switch s {
	case AvatarSmall:
		return 40, 48
	case AvatarLarge:
		return 96, 128
	default:
		return 64, 80
	}
}

// AvatarPalette 是杯中液体与杯缘的颜色。
type AvatarPalette struct {
	Liquid color.RGBA
	Border color.RGBA
}

var (
	paletteMilky   = AvatarPalette{Liquid: rgb(0xF5, 0xE6, 0xD3), Border: rgb(0xD2, 0xB4, 0x8C)}
	paletteBlack   = AvatarPalette{Liquid: rgb(0x8B, 0x45, 0x13), Border: rgb(0x5D, 0x2E, 0x0C)}
	paletteGreen   = AvatarPalette{Liquid: rgb(0xFF, 0xD7, 0x00), Border: rgb(0xDA, 0xA5, 0x20)}
	paletteFruit   = AvatarPalette{Liquid: rgb(0xFF, 0x63, 0x47), Border: rgb(0xCD, 0x5C, 0x5C)}
	paletteDefault = AvatarPalette{Liquid: rgb(0xFB, 0xBF, 0x24), Border: rgb(0xB4, 0x53, 0x09)}
)

var avatarPaletteRules = []struct {
	keywords []string
	palette  AvatarPalette
}{
	{keywords: []string{"奶", "乳", "拿鐵", "歐蕾"}, palette: paletteMilky},
	{keywords: []string{"紅"}, palette: paletteBlack},
	{keywords: []string{"綠", "青", "烏龍"}, palette: paletteGreen},
	{keywords: []string{"果", "檸檬", "柚"}, palette: paletteFruit},
}

var (
	cupBackground = color.RGBA{R: 0x1E, G: 0x29, B: 0x3B, A: 0x80}
	strawColor    = rgb(0x47, 0x55, 0x69)
	pearlColor    = rgb(0x0F, 0x17, 0x2A)
	glossColor    = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x1A}
)

// 先在固定画布上绘制，再缩放到目标尺寸。
const (
	avatarCanvasWidth  = 96
	avatarCanvasHeight = 128
)

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// AvatarColors 依饮品名称的关键字挑选配色，按奶类、红茶、绿茶乌龙、水果的顺序匹配。
func AvatarColors(name string) AvatarPalette {
	lower := strings.ToLower(name)
	for _, rule := range avatarPaletteRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.palette
			}
		}
	}
	return paletteDefault
}

// RenderAvatar 绘制饮品杯子头像。
func RenderAvatar(name string, size AvatarSize, hasToppings bool) image.Image {
	palette := AvatarColors(name)
	canvas := image.NewRGBA(image.Rect(0, 0, avatarCanvasWidth, avatarCanvasHeight))

	top := 16
	cup := image.Rect(8, top, avatarCanvasWidth-8, avatarCanvasHeight-2)
	liquidTop := cup.Max.Y - cup.Dy()*85/100

	// 吸管在杯子后方，先画。
	for y := 0; y < top+24; y++ {
		x := avatarCanvasWidth*3/4 - 4 + (top+24-y)/5
		fillRect(canvas, image.Rect(x, y, x+6, y+1), strawColor)
	}

	radius := 12
	for y := cup.Min.Y; y < cup.Max.Y; y++ {
		inset := bottomInset(cup.Max.Y-1-y, radius)
		row := image.Rect(cup.Min.X+inset, y, cup.Max.X-inset, y+1)
		fill := color.Color(cupBackground)
		if y >= liquidTop {
			fill = palette.Liquid
		}
		fillRect(canvas, row, fill)
		fillRect(canvas, image.Rect(row.Min.X, y, row.Min.X+2, y+1), palette.Border)
		fillRect(canvas, image.Rect(row.Max.X-2, y, row.Max.X, y+1), palette.Border)
	}
	fillRect(canvas, image.Rect(cup.Min.X, cup.Min.Y, cup.Max.X, cup.Min.Y+2), palette.Border)
	fillRect(canvas, image.Rect(cup.Min.X+bottomInset(0, radius), cup.Max.Y-2, cup.Max.X-bottomInset(0, radius), cup.Max.Y), palette.Border)

	gloss := image.Rect(cup.Min.X+6, liquidTop, cup.Min.X+6+cup.Dx()/4, cup.Max.Y-radius)
	draw.Draw(canvas, gloss, image.NewUniform(glossColor), image.Point{}, draw.Over)

	if hasToppings {
		spacing := cup.Dx() / 7
		for i := 1; i <= 6; i++ {
			cx := cup.Min.X + spacing*i
			cy := cup.Max.Y - 10 - (i%2)*6
			fillCircle(canvas, cx, cy, 4, pearlColor)
		}
	}

	width, height := size.Dimensions()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), canvas, canvas.Bounds(), draw.Over, nil)
	return dst
}

// RenderAvatarPNG 绘制头像并编码为 PNG。
func RenderAvatarPNG(name string, size AvatarSize, hasToppings bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, RenderAvatar(name, size, hasToppings)); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func fillCircle(dst *image.RGBA, cx, cy, r int, c color.RGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				dst.SetRGBA(cx+x, cy+y, c)
			}
		}
	}
}

// bottomInset 返回杯底圆角在距底部 fromBottom 行处的缩进。
func bottomInset(fromBottom, radius int) int {
	if fromBottom >= radius {
		return 0
	}
	dy := radius - fromBottom
	inset := radius
	for inset > 0 && (radius-inset)*(radius-inset)+dy*dy <= radius*radius {
		inset--
	}
	return inset
}
