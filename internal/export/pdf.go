package export

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres, A4 portrait.
const (
	pageMargin    = 14.0
	titleY        = 15.0
	dateY         = 22.0
	firstTableY   = 30.0
	tableGap      = 10.0
	summaryOffset = 20.0
	summaryStep   = 8.0
	rowHeight     = 7.0
	titleSize     = 16.0
	textSize      = 12.0
	tableSize     = 10.0
	fontFamily    = "report"
)

var (
	headerFill = [3]int{41, 128, 185}
	stripeFill = [3]int{245, 245, 245}
)

//go:embed fonts/DejaVuSansCondensed.ttf
var regularFont []byte

//go:embed fonts/DejaVuSansCondensed-Bold.ttf
var boldFont []byte

// PDFWriter renders a Document with fpdf.
//
// Text is set in an embedded UTF-8 font so currency glyphs such as ₹ print
// as is. FontPath, when set, names a TrueType font used instead.
type PDFWriter struct {
	FontPath string
}

// Write renders doc to w.
func (p PDFWriter) Write(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	p.addFonts(pdf)

	pdf.AddPage()

	pdf.SetFont(fontFamily, "", titleSize)
	pdf.Text(pageMargin, titleY, doc.Title)
	pdf.SetFont(fontFamily, "", textSize)
	pdf.Text(pageMargin, dateY, doc.DateLine)

	finalY := drawTable(pdf, doc.Sales, firstTableY)
	finalY = drawTable(pdf, doc.Expenses, finalY+tableGap)

	_, pageH := pdf.GetPageSize()
	base := finalY
	if base+summaryOffset+summaryStep*float64(len(doc.Summary)-1) > pageH-pageMargin {
		pdf.AddPage()
		base = 0
	}
	pdf.SetFont(fontFamily, "", textSize)
	pdf.SetTextColor(0, 0, 0)
	for i, line := range doc.Summary {
		pdf.Text(pageMargin, base+summaryOffset+summaryStep*float64(i), line)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (p PDFWriter) addFonts(pdf *fpdf.Fpdf) {
	if p.FontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", p.FontPath)
		pdf.AddUTF8Font(fontFamily, "B", p.FontPath)
		return
	}
	pdf.AddUTF8FontFromBytes(fontFamily, "", regularFont)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", boldFont)
}

// drawTable draws t starting at y and returns the y just below its last row.
// The header row is repeated at the top of every new page.
func drawTable(pdf *fpdf.Fpdf, t Table, y float64) float64 {
	pageW, pageH := pdf.GetPageSize()
	colW := (pageW - 2*pageMargin) / float64(len(t.Headers))

	header := func(y float64) {
		pdf.SetFont(fontFamily, "B", tableSize)
		pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		pdf.SetTextColor(255, 255, 255)
		pdf.SetXY(pageMargin, y)
		for _, h := range t.Headers {
			pdf.CellFormat(colW, rowHeight, h, "", 0, "L", true, 0, "")
		}
	}

	if y+2*rowHeight > pageH-pageMargin {
		pdf.AddPage()
		y = pageMargin
	}
	header(y)
	y += rowHeight

	pdf.SetFont(fontFamily, "", tableSize)
	for i, row := range t.Rows {
		if y+rowHeight > pageH-pageMargin {
			pdf.AddPage()
			y = pageMargin
			header(y)
			y += rowHeight
			pdf.SetFont(fontFamily, "", tableSize)
		}
		if i%2 == 1 {
			pdf.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(80, 80, 80)
		pdf.SetXY(pageMargin, y)
		for _, cell := range row {
			pdf.CellFormat(colW, rowHeight, cell, "", 0, "L", true, 0, "")
		}
		y += rowHeight
	}
	return y
}
