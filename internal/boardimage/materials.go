package boardimage

import (
	"image/color"
	"strings"
)

var (
	darkFallback  = color.RGBA{R: 52, G: 50, B: 48, A: 255}
	lightFallback = color.RGBA{R: 228, G: 222, B: 210, A: 255}
	frameFallback = color.RGBA{R: 96, G: 76, B: 54, A: 255}
)

// materialColors approximates the top-face tint of the block palette boards
// are usually built from. Keys follow the lowercase block id convention.
var materialColors = map[string]color.RGBA{
	"black_concrete":        {R: 18, G: 20, B: 25, A: 255},
	"white_concrete":        {R: 207, G: 213, B: 214, A: 255},
	"gray_concrete":         {R: 55, G: 58, B: 62, A: 255},
	"light_gray_concrete":   {R: 125, G: 125, B: 115, A: 255},
	"red_concrete":          {R: 142, G: 33, B: 33, A: 255},
	"blue_concrete":         {R: 45, G: 47, B: 143, A: 255},
	"black_wool":            {R: 24, G: 24, B: 28, A: 255},
	"white_wool":            {R: 234, G: 236, B: 237, A: 255},
	"obsidian":              {R: 15, G: 11, B: 25, A: 255},
	"crying_obsidian":       {R: 32, G: 10, B: 60, A: 255},
	"coal_block":            {R: 16, G: 16, B: 16, A: 255},
	"blackstone":            {R: 42, G: 36, B: 41, A: 255},
	"polished_blackstone":   {R: 53, G: 49, B: 57, A: 255},
	"polished_deepslate":    {R: 72, G: 72, B: 73, A: 255},
	"deepslate_tiles":       {R: 54, G: 54, B: 55, A: 255},
	"netherrack":            {R: 98, G: 38, B: 38, A: 255},
	"basalt":                {R: 80, G: 81, B: 86, A: 255},
	"stone":                 {R: 125, G: 125, B: 125, A: 255},
	"smooth_stone":          {R: 158, G: 158, B: 158, A: 255},
	"cobblestone":           {R: 127, G: 127, B: 127, A: 255},
	"sandstone":             {R: 216, G: 203, B: 155, A: 255},
	"red_sandstone":         {R: 186, G: 99, B: 29, A: 255},
	"end_stone":             {R: 219, G: 222, B: 158, A: 255},
	"purpur_block":          {R: 169, G: 125, B: 169, A: 255},
	"quartz_block":          {R: 236, G: 230, B: 223, A: 255},
	"smooth_quartz":         {R: 236, G: 231, B: 226, A: 255},
	"snow_block":            {R: 249, G: 254, B: 254, A: 255},
	"iron_block":            {R: 220, G: 220, B: 220, A: 255},
	"gold_block":            {R: 246, G: 208, B: 61, A: 255},
	"emerald_block":         {R: 42, G: 203, B: 87, A: 255},
	"lapis_block":           {R: 30, G: 66, B: 140, A: 255},
	"oak_planks":            {R: 162, G: 130, B: 78, A: 255},
	"spruce_planks":         {R: 114, G: 84, B: 48, A: 255},
	"birch_planks":          {R: 192, G: 175, B: 121, A: 255},
	"dark_oak_planks":       {R: 66, G: 43, B: 20, A: 255},
	"warped_planks":         {R: 43, G: 104, B: 99, A: 255},
	"stripped_crimson_stem": {R: 137, G: 57, B: 90, A: 255},
	"polished_granite":      {R: 154, G: 107, B: 89, A: 255},
	"polished_diorite":      {R: 192, G: 193, B: 194, A: 255},
	"polished_andesite":     {R: 132, G: 135, B: 134, A: 255},
	"glowstone":             {R: 171, G: 131, B: 84, A: 255},
	"sea_lantern":           {R: 172, G: 199, B: 190, A: 255},
}

// materialColor resolves a block name to a preview color. Unknown names fall
// back to a shade guessed from the name so custom palettes still render.
func materialColor(name string, fallback color.RGBA) color.RGBA {
	key := strings.ToLower(strings.TrimSpace(name))
	if clr, ok := materialColors[key]; ok {
		return clr
	}
	switch {
	case key == "":
		return fallback
	case strings.Contains(key, "black"), strings.Contains(key, "dark"):
		return color.RGBA{R: 38, G: 36, B: 38, A: 255}
	case strings.Contains(key, "white"), strings.Contains(key, "quartz"), strings.Contains(key, "snow"):
		return color.RGBA{R: 235, G: 233, B: 226, A: 255}
	default:
		return fallback
	}
}

func luminance(c color.RGBA) int {
	return (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
}
