package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"tilekit/internal/config"
	"tilekit/internal/filesystem"
	"tilekit/internal/graphics"
	"tilekit/internal/palette"
	"tilekit/internal/tileset"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const sidebarWidth = 300

type viewer struct {
	tileset      *tileset.TileSet
	templates    []tileset.TileTemplate
	index        int
	sprites      *graphics.SpriteManager
	legendLines  []string
	legendScroll int
	sidebarTab   int
	scale        int
	width        int
	height       int
	lastErr      string
}

const (
	tabInfo = iota
	tabLegend
)

func main() {
	ensureRuntimeCWD()

	cfg := config.MustLoadConfig("config.yaml")

	files := filesystem.New()
	defer files.Close()
	for _, m := range cfg.GetMounts() {
		if err := files.MountPath(m); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	ts, err := tileset.Load(cfg.Assets.TileSet)
	if err != nil {
		log.Fatal(err)
	}

	pal, err := palette.Find(files, ts.Palette(), cfg.GetPaletteExt())
	if err != nil {
		log.Printf("Warning: Failed to load palette %s: %v", ts.Palette(), err)
		pal = palette.Grayscale()
	}

	v := &viewer{
		tileset:     ts,
		templates:   ts.Templates(),
		sprites:     graphics.NewSpriteManager(ts, pal),
		legendLines: buildLegendLines(ts),
		sidebarTab:  tabInfo,
		scale:       cfg.GetViewerScale(),
		width:       cfg.GetScreenWidth(),
		height:      cfg.GetScreenHeight(),
	}

	// Missing bitmaps are drawn as placeholders, so a failed load is not fatal.
	if err := ts.LoadTiles(files, tileset.WithWorkers(cfg.GetWorkers())); err != nil {
		log.Printf("Warning: Failed to load tiles: %v", err)
		v.lastErr = err.Error()
	}
	if len(v.templates) == 0 {
		v.lastErr = "no templates defined"
	}

	ebiten.SetWindowSize(v.width, v.height)
	ebiten.SetWindowTitle(fmt.Sprintf("%s - %s", cfg.GetWindowTitle(), ts.Name()))
	if cfg.Display.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if v.sidebarTab == tabInfo {
			v.sidebarTab = tabLegend
		} else {
			v.sidebarTab = tabInfo
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.Key1) {
		v.sidebarTab = tabInfo
	}
	if inpututil.IsKeyJustPressed(ebiten.Key2) {
		v.sidebarTab = tabLegend
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		if len(v.templates) > 0 {
			v.index = (v.index + 1) % len(v.templates)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		if len(v.templates) > 0 {
			v.index--
			if v.index < 0 {
				v.index = len(v.templates) - 1
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		v.scale = min(v.scale+1, 8)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		v.scale = max(v.scale-1, 1)
	}

	if v.sidebarTab == tabLegend {
		_, wheelY := ebiten.Wheel()
		if wheelY != 0 {
			v.legendScroll -= int(wheelY * 14)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
			v.legendScroll += 14
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
			v.legendScroll -= 14
		}
		v.legendScroll = max(0, min(v.legendScroll, v.maxLegendScroll()))
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{15, 15, 22, 255})

	if len(v.templates) == 0 {
		ebitenutil.DebugPrintAt(screen, v.lastErr, 16, 16)
		return
	}

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()

	padding := 16
	panelW := screenW - sidebarWidth - padding*3
	panelH := screenH - padding*2
	panelX := padding
	panelY := padding
	sidebarX := panelX + panelW + padding

	t := v.templates[v.index]
	v.drawTemplatePanel(screen, t, panelX, panelY, panelW, panelH)
	v.drawSidebar(screen, t, sidebarX, padding, sidebarWidth, panelH)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return v.width, v.height
}

func (v *viewer) maxLegendScroll() int {
	lineHeight := 14
	padding := 12
	tabHeight := 24
	contentHeight := max(v.height-padding*2-tabHeight-padding, lineHeight)
	totalHeight := len(v.legendLines) * lineHeight
	if totalHeight <= contentHeight {
		return 0
	}
	return totalHeight - contentHeight
}

func (v *viewer) drawTemplatePanel(screen *ebiten.Image, t tileset.TileTemplate, x, y, w, h int) {
	drawFilledRect(screen, x, y, w, h, color.RGBA{20, 20, 35, 255})
	drawRectBorder(screen, x, y, w, h, 2, color.RGBA{70, 70, 90, 255})

	sprite := v.sprites.GetSprite(t.ID)
	sw, sh := sprite.Bounds().Dx()*v.scale, sprite.Bounds().Dy()*v.scale

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(v.scale), float64(v.scale))
	op.GeoM.Translate(float64(x+(w-sw)/2), float64(y+(h-sh)/2))
	screen.DrawImage(sprite, op)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: template %d (%s)", v.tileset.Name(), t.ID, t.Image), x+12, y+8)
	ebitenutil.DebugPrintAt(screen, "Left/Right (or A/D) to switch templates, +/- to zoom, Esc to quit", x+12, y+24)
	if v.lastErr != "" {
		ebitenutil.DebugPrintAt(screen, "load error: "+v.lastErr, x+12, y+h-24)
	}
}

func (v *viewer) drawSidebar(screen *ebiten.Image, t tileset.TileTemplate, x, y, w, h int) {
	drawFilledRect(screen, x, y, w, h, color.RGBA{18, 18, 26, 255})
	drawRectBorder(screen, x, y, w, h, 2, color.RGBA{70, 70, 90, 255})

	tabHeight := 24
	drawSidebarTabs(screen, x, y, w, tabHeight, v.sidebarTab)
	row := y + tabHeight + 12

	if v.sidebarTab == tabLegend {
		v.drawLegendList(screen, x, row, h-(row-y)-12)
		return
	}

	loaded := "placeholder"
	if v.tileset.Loaded(t.ID) {
		loaded = "loaded"
	}
	stats := []string{
		fmt.Sprintf("Template %d of %d", v.index+1, len(v.templates)),
		fmt.Sprintf("Image: %s", t.Image),
		fmt.Sprintf("Size: %dx%d", t.Size.X, t.Size.Y),
		fmt.Sprintf("PickAny: %t", t.PickAny),
		fmt.Sprintf("Bitmap: %s", loaded),
		fmt.Sprintf("Cached: %d/%d", v.tileset.LoadedCount(), v.tileset.TemplateCount()),
	}
	for _, line := range stats {
		ebitenutil.DebugPrintAt(screen, line, x+12, row)
		row += 16
	}

	row += 8
	ebitenutil.DebugPrintAt(screen, "Cells:", x+12, row)
	row += 16
	for i := 0; i < t.CellCount() && i < 256 && row < y+h-16; i++ {
		ref := tileset.TileReference{Type: t.ID, Index: byte(i)}
		terrainType, err := v.tileset.GetTerrainType(ref)
		if err != nil {
			break
		}
		drawFilledRect(screen, x+12, row+3, 10, 10, v.terrainColor(terrainType))
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%3d: %s", i, terrainType), x+28, row)
		row += 16
	}
}

func drawSidebarTabs(screen *ebiten.Image, x, y, w, h int, active int) {
	tabW := w / 2
	infoColor := color.RGBA{40, 40, 55, 255}
	legendColor := color.RGBA{40, 40, 55, 255}
	if active == tabInfo {
		infoColor = color.RGBA{70, 70, 95, 255}
	} else {
		legendColor = color.RGBA{70, 70, 95, 255}
	}
	drawFilledRect(screen, x, y, tabW, h, infoColor)
	drawFilledRect(screen, x+tabW, y, w-tabW, h, legendColor)
	drawRectBorder(screen, x, y, w, h, 2, color.RGBA{70, 70, 90, 255})
	ebitenutil.DebugPrintAt(screen, "Info (1)", x+10, y+6)
	ebitenutil.DebugPrintAt(screen, "Terrain (2)", x+tabW+10, y+6)
}

func (v *viewer) drawLegendList(screen *ebiten.Image, x, y, h int) {
	lineHeight := 14
	startY := y - v.legendScroll
	types := v.tileset.TerrainTypes()
	for i, line := range v.legendLines {
		drawY := startY + i*lineHeight
		if drawY < y-lineHeight {
			continue
		}
		if drawY > y+h-lineHeight {
			break
		}
		if i < len(types) {
			drawFilledRect(screen, x+10, drawY+2, 10, 10, types[i].Color)
		}
		ebitenutil.DebugPrintAt(screen, line, x+26, drawY)
	}
}

func (v *viewer) terrainColor(terrainType string) color.RGBA {
	if info, ok := v.tileset.TerrainType(terrainType); ok && info.Color.A != 0 {
		return info.Color
	}
	return color.RGBA{128, 128, 128, 255}
}

// buildLegendLines lists terrain types first, in the same order as
// TileSet.TerrainTypes, so the swatches line up.
func buildLegendLines(ts *tileset.TileSet) []string {
	lines := graphics.TerrainLegend(ts)
	lines = append(lines, "")
	lines = append(lines, "Notes")
	lines = append(lines, "-----")
	lines = append(lines, "Flat color tiles: bitmap not loaded")
	lines = append(lines, fmt.Sprintf("Unlisted cells: %s", tileset.DefaultTerrainType))
	return lines
}

func drawFilledRect(screen *ebiten.Image, x, y, w, h int, clr color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), clr, false)
}

func drawRectBorder(screen *ebiten.Image, x, y, w, h, thickness int, clr color.RGBA) {
	t := float32(thickness)
	fx := float32(x)
	fy := float32(y)
	fw := float32(w)
	fh := float32(h)
	vector.DrawFilledRect(screen, fx, fy, fw, t, clr, false)
	vector.DrawFilledRect(screen, fx, fy+fh-t, fw, t, clr, false)
	vector.DrawFilledRect(screen, fx, fy, t, fh, clr, false)
	vector.DrawFilledRect(screen, fx+fw-t, fy, t, fh, clr, false)
}

func ensureRuntimeCWD() {
	if _, err := os.Stat("config.yaml"); err == nil {
		return
	}
	exe, err := os.Executable()
	if err != nil {
		return
	}
	execDir := filepath.Dir(exe)
	_ = os.Chdir(execDir)
}
