// Package certimage draws completion certificates and verification QR codes.
package certimage

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"time"

	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"skillbridge_backend/pkg/logger"
)

const (
	Width  = 800
	Height = 600

	qrSize       = 80
	qrModulePx   = 10
	dateLayout   = "January 02, 2006"
	borderColor  = "#2563eb"
	headingColor = "#1f2937"
	mutedColor   = "#6b7280"
)

// Content is everything printed on one certificate.
type Content struct {
	StudentName   string
	CourseName    string
	CertificateID string
	Issuer        string
	CompletedAt   time.Time
	// QR is the encoded PNG produced by QRCode; may be nil.
	QR []byte
}

// Renderer produces PNG bytes. It is safe for concurrent use.
type Renderer struct {
	ttf *truetype.Font
}

// NewRenderer loads the TrueType font at fontPath. A missing or unparsable
// font is not an error: the renderer falls back to the built-in bitmap face.
func NewRenderer(fontPath string) *Renderer {
	r := &Renderer{}
	if fontPath == "" {
		return r
	}

	f, err := loadFont(fontPath)
	if err != nil {
		logger.Log.Warn("certificate font unavailable, using bitmap face",
			zap.String("path", fontPath), zap.Error(err))
		return r
	}
	r.ttf = f
	return r
}

func loadFont(fontPath string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return parsed, nil
}

// face returns a face of the given point size. truetype faces hold a glyph
// cache and are not safe for concurrent use, so one is built per render.
func (r *Renderer) face(size float64) font.Face {
	if r.ttf == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(r.ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// QRCode encodes url as a PNG with low error correction and 10px modules.
func (r *Renderer) QRCode(url string) ([]byte, error) {
	q, err := qrcode.New(url, qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return q.PNG(-qrModulePx)
}

// Certificate draws the 800x600 certificate and returns it as PNG.
func (r *Renderer) Certificate(c Content) ([]byte, error) {
	dc := gg.NewContext(Width, Height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	// 双层边框
	dc.SetHexColor(borderColor)
	dc.SetLineWidth(3)
	dc.DrawRectangle(20, 20, Width-40, Height-40)
	dc.Stroke()
	dc.SetLineWidth(1)
	dc.DrawRectangle(30, 30, Width-60, Height-60)
	dc.Stroke()

	title := r.face(36)
	name := r.face(28)
	text := r.face(18)
	small := r.face(14)

	centered := func(face font.Face, hex, s string, y float64) {
		dc.SetFontFace(face)
		dc.SetHexColor(hex)
		dc.DrawStringAnchored(s, Width/2, y, 0.5, 1)
	}

	centered(title, headingColor, "Certificate of Completion", 80)
	centered(text, mutedColor, "This certifies that", 150)
	centered(name, borderColor, c.StudentName, 190)
	centered(text, mutedColor, "has successfully completed", 240)
	centered(name, headingColor, c.CourseName, 280)
	centered(text, mutedColor, "Completion Date: "+c.CompletedAt.Format(dateLayout), 350)

	dc.SetFontFace(small)
	dc.SetHexColor(mutedColor)
	dc.DrawStringAnchored("Certificate ID: "+c.CertificateID, 50, Height-80, 0, 1)

	dc.SetFontFace(text)
	dc.SetHexColor(borderColor)
	dc.DrawStringAnchored(c.Issuer, 50, Height-60, 0, 1)

	if qr := scaleQR(c.QR); qr != nil {
		dc.DrawImage(qr, Width-130, Height-130)
		dc.SetFontFace(small)
		dc.SetHexColor(mutedColor)
		dc.DrawStringAnchored("Verify Online", Width-90, Height-48, 0.5, 1)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleQR decodes the QR PNG and shrinks it to 80x80. Undecodable input is
// skipped.
func scaleQR(raw []byte) image.Image {
	if len(raw) == 0 {
		return nil
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		logger.Log.Warn("skip undecodable qr image", zap.Error(err))
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, qrSize, qrSize))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
