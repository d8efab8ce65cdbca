// Package render draws the blackjack table as a PNG image.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Table geometry in pixels
const (
	CardWidth  = 226
	CardHeight = 314
	Gap        = 20
	Padding    = 30
)

// BackCode names the card-back image
const BackCode = "back"

var (
	tableGreen = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	cardFace   = color.RGBA{R: 250, G: 250, B: 245, A: 255}
	cardEdge   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	suitRed    = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	suitBlack  = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	backBlue   = color.RGBA{R: 30, G: 60, B: 140, A: 255}
)

// Renderer composes card art into a table image. Card art is read from
// <dir>/<code>.png on first use and cached; missing art is replaced by a
// plain drawn card so a table can always be produced.
type Renderer struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]image.Image
}

// New creates a Renderer reading art from dir
func New(dir string, logger *slog.Logger) *Renderer {
	return &Renderer{
		dir:    dir,
		logger: logger.With(slog.String("component", "renderer")),
		cache:  make(map[string]image.Image),
	}
}

// Render draws the player's cards on the top row and the dealer's below.
// With hideDealerSecondCard the dealer's second card is drawn face down.
func (r *Renderer) Render(player, dealer model.Hand, hideDealerSecondCard bool) ([]byte, error) {
	cols := max(len(player), len(dealer), 1)
	width := cols*(CardWidth+Gap) - Gap + Padding*2
	height := CardHeight*2 + Gap + Padding*2

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(tableGreen), image.Point{}, draw.Src)

	for i, c := range player {
		r.paste(img, r.art(c.Code()), slot(i, 0))
	}
	for i, c := range dealer {
		code := c.Code()
		if i == 1 && hideDealerSecondCard {
			code = BackCode
		}
		r.paste(img, r.art(code), slot(i, 1))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode table: %w", err)
	}
	return buf.Bytes(), nil
}

// slot returns the top-left corner of the card at column col in row row
func slot(col, row int) image.Point {
	return image.Pt(
		Padding+col*(CardWidth+Gap),
		Padding+row*(CardHeight+Gap),
	)
}

func (r *Renderer) paste(dst draw.Image, art image.Image, at image.Point) {
	rect := image.Rectangle{Min: at, Max: at.Add(image.Pt(CardWidth, CardHeight))}
	draw.Draw(dst, rect, art, art.Bounds().Min, draw.Over)
}

// art returns the image for code, loading it once
func (r *Renderer) art(code string) image.Image {
	r.mu.RLock()
	img, ok := r.cache[code]
	r.mu.RUnlock()
	if ok {
		return img
	}

	img, err := r.load(code)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("unreadable card art, using placeholder",
				slog.String("code", code),
				slog.String("error", err.Error()),
			)
		}
		img = placeholder(code)
	}

	r.mu.Lock()
	r.cache[code] = img
	r.mu.Unlock()
	return img
}

func (r *Renderer) load(code string) (image.Image, error) {
	if r.dir == "" {
		return nil, fs.ErrNotExist
	}
	f, err := os.Open(filepath.Join(r.dir, code+".png"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// placeholder draws a bordered card: a coloured band marks the suit, and
// the back is solid blue
func placeholder(code string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(cardEdge), image.Point{}, draw.Src)

	inner := img.Bounds().Inset(4)
	fill := cardFace
	if code == BackCode {
		fill = backBlue
	}
	draw.Draw(img, inner, image.NewUniform(fill), image.Point{}, draw.Src)

	if c, err := model.ParseCard(code); err == nil {
		band := suitBlack
		if c.Suit == model.SuitHearts || c.Suit == model.SuitDiamonds {
			band = suitRed
		}
		// Band height grows with the card's points so ranks are distinguishable
		h := 12 * c.Rank.Points()
		bandRect := image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, inner.Min.Y+h)
		draw.Draw(img, bandRect, image.NewUniform(band), image.Point{}, draw.Src)
	}
	return img
}
