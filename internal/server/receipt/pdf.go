package receipt

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/go-pdf/fpdf"
)

// Page geometry in points on a Letter page (612x792). Positions are given
// from the bottom edge, like a plotter, and flipped when drawing.
const (
	pageHeight = 792.0

	marginX      = 100.0
	titleY       = 750.0
	lineStep     = 20.0
	barcodeY     = 650.0
	barcodeW     = 200.0
	barcodeH     = 36.0
	barcodePxW   = 400
	barcodePxH   = 72
	fontFamily   = "Helvetica"
	fontSize     = 12.0
	receiptTitle = "Detalhes da Compra"
)

// PDFRenderer draws receipts with fpdf.
type PDFRenderer struct{}

// NewPDFRenderer returns the default Renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (p *PDFRenderer) Render(r Receipt) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(r.Code(), true)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	lines := []string{
		receiptTitle,
		"Produto: " + r.Product,
		"Valor: " + r.Amount,
		"Onda: " + r.Wave,
	}
	for i, l := range lines {
		pdf.Text(marginX, pageHeight-(titleY-float64(i)*lineStep), tr(l))
	}

	img, err := barcodePNG(r.Code())
	if err != nil {
		return nil, err
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(r.Code(), opts, bytes.NewReader(img))
	pdf.ImageOptions(r.Code(), marginX, pageHeight-barcodeY-barcodeH, barcodeW, barcodeH, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func barcodePNG(code string) ([]byte, error) {
	bc, err := code128.Encode(code)
	if err != nil {
		return nil, fmt.Errorf("encode barcode: %w", err)
	}

	scaled, err := barcode.Scale(bc, barcodePxW, barcodePxH)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
