package certimage

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePNG(t *testing.T, raw []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestQRCode_IsSquarePNG(t *testing.T) {
	r := NewRenderer("")

	raw, err := r.QRCode("https://skillbridge.edu/verify/SB-2025-ABCDEF12")
	require.NoError(t, err)

	img := decodePNG(t, raw)
	b := img.Bounds()
	assert.Equal(t, b.Dx(), b.Dy())
	assert.Zero(t, b.Dx()%qrModulePx)
}

func TestCertificate_Dimensions(t *testing.T) {
	r := NewRenderer("")
	qr, err := r.QRCode("https://skillbridge.edu/verify/SB-2025-ABCDEF12")
	require.NoError(t, err)

	raw, err := r.Certificate(Content{
		StudentName:   "Priya Sharma",
		CourseName:    "Digital Literacy Basics",
		CertificateID: "SB-2025-ABCDEF12",
		Issuer:        "SkillBridge",
		CompletedAt:   time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		QR:            qr,
	})
	require.NoError(t, err)

	img := decodePNG(t, raw)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())

	// QR 左上角为静区，应为白色
	red, green, blue, _ := img.At(Width-129, Height-129).RGBA()
	assert.Equal(t, uint32(0xffff), red)
	assert.Equal(t, uint32(0xffff), green)
	assert.Equal(t, uint32(0xffff), blue)
}

func TestCertificate_SkipsUndecodableQR(t *testing.T) {
	r := NewRenderer("")

	raw, err := r.Certificate(Content{
		StudentName:   "Ravi",
		CourseName:    "Basic Computer Skills",
		CertificateID: "SB-2025-00000000",
		Issuer:        "SkillBridge",
		CompletedAt:   time.Now(),
		QR:            []byte("not a png"),
	})
	require.NoError(t, err)
	assert.Equal(t, Width, decodePNG(t, raw).Bounds().Dx())
}

func TestNewRenderer_FallsBackOnBadFont(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))

	for _, path := range []string{bad, filepath.Join(t.TempDir(), "missing.ttf")} {
		r := NewRenderer(path)
		assert.Nil(t, r.ttf)

		raw, err := r.Certificate(Content{StudentName: "A", CourseName: "B", CertificateID: "SB-2025-11111111"})
		require.NoError(t, err)
		assert.NotEmpty(t, raw)
	}
}
