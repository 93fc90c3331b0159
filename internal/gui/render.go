package gui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// texture is a surface.Surface backed by a raylib render texture. The
// texture keeps its pixels between frames, so Fade leaves trails the way a
// browser canvas does. Draw calls must happen between begin and end.
type texture struct {
	target rl.RenderTexture2D
	w, h   int
	bg     rl.Color
}

func newTexture(w, h int, bg color.NRGBA) *texture {
	t := &texture{
		target: rl.LoadRenderTexture(int32(w), int32(h)),
		w:      w,
		h:      h,
		bg:     toColor(bg),
	}
	rl.BeginTextureMode(t.target)
	rl.ClearBackground(t.bg)
	rl.EndTextureMode()
	return t
}

func (t *texture) Size() (int, int) { return t.w, t.h }

func (t *texture) Clear() { rl.ClearBackground(t.bg) }

// Fade paints the background over the whole texture at the given alpha.
func (t *texture) Fade(alpha float64) {
	c := t.bg
	c.A = alphaByte(alpha)
	rl.DrawRectangle(0, 0, int32(t.w), int32(t.h), c)
}

func (t *texture) FillCircle(x, y, r float64, c color.NRGBA) {
	rl.DrawCircleV(rl.NewVector2(float32(x), float32(y)), float32(r), toColor(c))
}

func (t *texture) Line(x0, y0, x1, y1, width float64, c color.NRGBA) {
	rl.DrawLineEx(rl.NewVector2(float32(x0), float32(y0)), rl.NewVector2(float32(x1), float32(y1)), float32(width), toColor(c))
}

func (t *texture) begin() { rl.BeginTextureMode(t.target) }
func (t *texture) end()   { rl.EndTextureMode() }

// blit draws the texture to the screen. Render textures are stored upside
// down, hence the negative source height.
func (t *texture) blit() {
	src := rl.NewRectangle(0, 0, float32(t.target.Texture.Width), -float32(t.target.Texture.Height))
	rl.DrawTextureRec(t.target.Texture, src, rl.NewVector2(0, 0), rl.White)
}

func (t *texture) unload() { rl.UnloadRenderTexture(t.target) }

func toColor(c color.NRGBA) rl.Color { return rl.NewColor(c.R, c.G, c.B, c.A) }

func alphaByte(a float64) uint8 {
	switch {
	case a <= 0:
		return 0
	case a >= 1:
		return 255
	}
	return uint8(a*255 + 0.5)
}
