package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/testutil"
)

var magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}

func writeSolidArt(t *testing.T, dir, code string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	f, err := os.Create(filepath.Join(dir, code+".png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func centre(col, row int) image.Point {
	return slot(col, row).Add(image.Pt(CardWidth/2, CardHeight/2))
}

func colorAt(img image.Image, p image.Point) color.RGBA {
	r, g, b, a := img.At(p.X, p.Y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestTableSize(t *testing.T) {
	r := New("", testutil.NopLogger())
	player := model.Hand(model.MustParseCards("AS", "KD"))
	dealer := model.Hand(model.MustParseCards("2C", "3C", "4C"))

	data, err := r.Render(player, dealer, false)
	require.NoError(t, err)

	img := decode(t, data)
	assert.Equal(t, 3*(CardWidth+Gap)-Gap+2*Padding, img.Bounds().Dx())
	assert.Equal(t, 2*CardHeight+Gap+2*Padding, img.Bounds().Dy())
	assert.Equal(t, tableGreen, colorAt(img, image.Pt(1, 1)))
}

func TestEmptyHandsStillRender(t *testing.T) {
	r := New("", testutil.NopLogger())

	data, err := r.Render(nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, CardWidth+2*Padding, decode(t, data).Bounds().Dx())
}

func TestCardArtIsUsed(t *testing.T) {
	dir := t.TempDir()
	writeSolidArt(t, dir, "AS", magenta)
	r := New(dir, testutil.NopLogger())

	data, err := r.Render(model.Hand(model.MustParseCards("AS")), model.Hand(model.MustParseCards("2C", "3C")), true)
	require.NoError(t, err)

	img := decode(t, data)
	assert.Equal(t, magenta, colorAt(img, centre(0, 0)))
}

func TestDealerSecondCardHidden(t *testing.T) {
	dir := t.TempDir()
	writeSolidArt(t, dir, BackCode, magenta)
	r := New(dir, testutil.NopLogger())
	player := model.Hand(model.MustParseCards("AS", "KD"))
	dealer := model.Hand(model.MustParseCards("2C", "3C"))

	hidden, err := r.Render(player, dealer, true)
	require.NoError(t, err)
	assert.Equal(t, magenta, colorAt(decode(t, hidden), centre(1, 1)))

	shown, err := r.Render(player, dealer, false)
	require.NoError(t, err)
	assert.NotEqual(t, magenta, colorAt(decode(t, shown), centre(1, 1)))
}

func TestOnlySecondDealerCardIsHidden(t *testing.T) {
	dir := t.TempDir()
	writeSolidArt(t, dir, BackCode, magenta)
	r := New(dir, testutil.NopLogger())

	data, err := r.Render(nil, model.Hand(model.MustParseCards("2C", "3C", "4C")), true)
	require.NoError(t, err)

	img := decode(t, data)
	assert.NotEqual(t, magenta, colorAt(img, centre(0, 1)))
	assert.NotEqual(t, magenta, colorAt(img, centre(2, 1)))
}

func TestCorruptArtFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AS.png"), []byte("not a png"), 0o644))
	r := New(dir, testutil.NopLogger())

	_, err := r.Render(model.Hand(model.MustParseCards("AS")), nil, false)
	assert.NoError(t, err)
}
