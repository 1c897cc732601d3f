package pdfexport

import (
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	margin       = 15.0
	contentWidth = pageWidth - 2*margin
	footerSpace  = 15.0
	lineHeight   = 5.0
)

// Item table column widths; they add up to contentWidth.
var columns = [4]struct {
	title string
	width float64
	align string
}{
	{"Descripción", 90, "L"},
	{"Cantidad", 25, "R"},
	{"Precio", 32.5, "R"},
	{"Importe", 32.5, "R"},
}

type layout struct {
	doc *entity.Document
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newLayout(doc *entity.Document) *layout {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, footerSpace)
	pdf.AliasNbPages("{nb}")
	pdf.SetTitle(doc.Title+" "+doc.Meta.Number, true)
	pdf.SetAuthor(doc.Issuer.Name, true)
	pdf.SetCreator("QuickBill", true)

	l := &layout{
		doc: doc,
		pdf: pdf,
		// Core fonts are cp1252, which covers Spanish text and the euro sign.
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	pdf.SetFooterFunc(l.footer)
	return l
}

func (l *layout) draw() *gofpdf.Fpdf {
	l.pdf.AddPage()
	l.header()
	l.parties()
	l.table()
	l.totals()
	l.notes()
	return l.pdf
}

func (l *layout) header() {
	pdf := l.pdf
	top := pdf.GetY()

	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(contentWidth/2, 12, l.tr(l.doc.Title), "", 0, "L", false, 0, "")

	meta := [][2]string{
		{"Factura #:", l.doc.Meta.Number},
		{"Fecha de emisión:", l.doc.Meta.IssueDate},
		{"Fecha de vencimiento:", l.doc.Meta.DueDate},
	}
	pdf.SetXY(margin+contentWidth/2, top)
	for _, m := range meta {
		pdf.SetX(margin + contentWidth/2)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(45, lineHeight, l.tr(m[0]), "", 0, "R", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(contentWidth/2-45, lineHeight, l.tr(m[1]), "", 1, "R", false, 0, "")
	}

	pdf.SetY(top + 20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(margin, pdf.GetY(), margin+contentWidth, pdf.GetY())
	pdf.Ln(4)
}

func (l *layout) parties() {
	pdf := l.pdf
	top := pdf.GetY()
	half := contentWidth / 2

	leftEnd := l.party("De:", l.doc.Issuer, margin, top, half-5)
	rightEnd := l.party("Para:", l.doc.Recipient, margin+half+5, top, half-5)

	end := leftEnd
	if rightEnd > end {
		end = rightEnd
	}
	pdf.SetY(end + 6)
}

// party draws one address block and returns the y where it ends.
func (l *layout) party(label string, p entity.DocumentParty, x, y, width float64) float64 {
	pdf := l.pdf
	pdf.SetXY(x, y)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(width, 6, l.tr(label), "", 2, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.MultiCell(width, lineHeight, l.tr(p.Name), "", "L", false)
	pdf.SetFont("Arial", "", 9)
	for _, line := range partyLines(p) {
		pdf.SetX(x)
		pdf.MultiCell(width, lineHeight, l.tr(line), "", "L", false)
	}
	return pdf.GetY()
}

func partyLines(p entity.DocumentParty) []string {
	var lines []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	add(p.TaxID)
	add(p.Address)
	add(strings.TrimSpace(p.PostalCode + " " + p.City))
	add(p.Country)
	add(p.Email)
	add(p.Phone)
	return lines
}

func (l *layout) tableHeader() {
	pdf := l.pdf
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(33, 37, 41)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, l.tr(c.title), "B", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
}

func (l *layout) table() {
	pdf := l.pdf
	l.tableHeader()
	pdf.SetFont("Arial", "", 9)

	for _, row := range l.doc.Rows {
		lines := pdf.SplitLines([]byte(l.tr(row.Description)), columns[0].width-2)
		if len(lines) == 0 {
			lines = [][]byte{nil}
		}

		// A row that fits on a page is never split; the header repeats on the
		// new page. Longer descriptions fill each page and continue.
		if room := l.lineRoom(); room < len(lines) && (room == 0 || len(lines) <= l.pageLines()) {
			l.newTablePage()
		}

		first := true
		for len(lines) > 0 {
			room := l.lineRoom()
			if room == 0 {
				l.newTablePage()
				room = l.lineRoom()
			}
			n := min(room, len(lines))
			l.rowChunk(lines[:n], row, first)
			lines = lines[n:]
			first = false
		}
	}
	pdf.Ln(4)
}

// rowChunk draws description lines that are known to fit on the current page.
// Quantity and amounts go next to the first chunk of a row.
func (l *layout) rowChunk(lines [][]byte, row entity.DocumentRow, first bool) {
	pdf := l.pdf
	y := pdf.GetY()
	height := float64(len(lines)) * lineHeight

	for i, line := range lines {
		pdf.SetXY(margin, y+float64(i)*lineHeight)
		pdf.CellFormat(columns[0].width, lineHeight, string(line), "", 0, columns[0].align, false, 0, "")
	}
	if first {
		pdf.SetXY(margin+columns[0].width, y)
		for i, v := range []string{row.Quantity, row.UnitPrice, row.Amount} {
			c := columns[i+1]
			pdf.CellFormat(c.width, lineHeight, l.tr(v), "", 0, c.align, false, 0, "")
		}
	}

	pdf.SetXY(margin, y+height)
	pdf.SetDrawColor(230, 230, 230)
	pdf.Line(margin, y+height, margin+contentWidth, y+height)
}

// lineRoom is how many description lines still fit above the footer.
func (l *layout) lineRoom() int {
	room := int((pageHeight - footerSpace - l.pdf.GetY()) / lineHeight)
	if room < 0 {
		return 0
	}
	return room
}

// pageLines is how many description lines fit under the header of a fresh page.
func (l *layout) pageLines() int {
	return int((pageHeight - footerSpace - margin - 7) / lineHeight)
}

func (l *layout) newTablePage() {
	l.pdf.AddPage()
	l.tableHeader()
	l.pdf.SetFont("Arial", "", 9)
}

func (l *layout) totals() {
	pdf := l.pdf
	if pdf.GetY()+3*7 > pageHeight-footerSpace {
		pdf.AddPage()
	}

	labelX := margin + contentWidth - 80
	rows := []struct {
		label, value string
		bold         bool
	}{
		{"Subtotal:", l.doc.Totals.Subtotal, false},
		{l.doc.Totals.TaxLabel + ":", l.doc.Totals.TaxAmount, false},
		{"Total:", l.doc.Totals.Total, true},
	}
	for _, r := range rows {
		style := ""
		size := 10.0
		if r.bold {
			style, size = "B", 12
		}
		pdf.SetX(labelX)
		pdf.SetFont("Arial", style, size)
		pdf.CellFormat(45, 7, l.tr(r.label), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, l.tr(r.value), "", 1, "R", false, 0, "")
	}
}

func (l *layout) notes() {
	if !l.doc.HasNotes() {
		return
	}
	pdf := l.pdf
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(contentWidth, 6, l.tr("Notas:"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(contentWidth, lineHeight, l.tr(l.doc.Notes), "", "L", false)
}

func (l *layout) footer() {
	pdf := l.pdf
	pdf.SetY(-12)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	label := l.tr("Página " + strconv.Itoa(pdf.PageNo()) + " de {nb}")
	pdf.CellFormat(0, 6, label, "", 0, "C", false, 0, "")
	pdf.SetTextColor(33, 37, 41)
}
