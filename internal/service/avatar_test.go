package service

import (
	"bytes"
	"image/png"
	"testing"
)

func TestAvatarColors(t *testing.T) {
	cases := map[string]AvatarPalette{
		"珍珠鮮奶茶": paletteMilky,
		"熟成紅茶":  paletteBlack,
		"四季春青茶": paletteGreen,
		"凍頂烏龍":  paletteGreen,
		"葡萄柚綠茶": paletteGreen,
		"百香果多多": paletteFruit,
		"冬瓜檸檬":  paletteFruit,
		"仙草凍":   paletteDefault,
		"紅茶拿鐵":  paletteMilky,
	}
	for name, want := range cases {
		if got := AvatarColors(name); got != want {
			t.Fatalf("AvatarColors(%s) = %#v, want %#v", name, got, want)
		}
	}
}

func TestRenderAvatarPNGSizes(t *testing.T) {
	for _, size := range []AvatarSize{AvatarSmall, AvatarMedium, AvatarLarge} {
		data, err := RenderAvatarPNG("珍珠奶茶", size, true)
		if err != nil {
			t.Fatalf("render %s: %v", size, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode %s: %v", size, err)
		}
		width, height := size.Dimensions()
		if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
			t.Fatalf("size %s: expected %dx%d, got %v", size, width, height, img.Bounds())
		}
	}
}

func TestRenderAvatarUsesLiquidColor(t *testing.T) {
	img := RenderAvatar("熟成紅茶", AvatarLarge, false)
	width, height := AvatarLarge.Dimensions()

	r, g, b, _ := img.At(width/2, height*3/4).RGBA()
	want := paletteBlack.Liquid
	if !closeTo(r>>8, want.R) || !closeTo(g>>8, want.G) || !closeTo(b>>8, want.B) {
		t.Fatalf("expected liquid color %#v at the cup center, got %d,%d,%d", want, r>>8, g>>8, b>>8)
	}
}

func TestParseAvatarSize(t *testing.T) {
	if ParseAvatarSize("LG") != AvatarLarge || ParseAvatarSize("sm") != AvatarSmall || ParseAvatarSize("huge") != AvatarMedium {
		t.Fatalf("unexpected size parsing")
	}
}

func closeTo(got uint32, want uint8) bool {
	diff := int(got) - int(want)
	return diff >= -2 && diff <= 2
}
