package render

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"quotegen-backend/internal/quotation/domain"
)

const (
	fontName = "游ゴシック"

	// half-points
	sizeBody       = "21"
	sizeTitle      = "40"
	sizeTotal      = "32"
	sizeSubheading = "24"
)

var tableHeaders = []string{"品目", "単価", "数量", "単位", "金額 (税抜)"}

// DocxRenderer lays a quotation record out as a Word document
type DocxRenderer struct{}

func NewDocxRenderer() *DocxRenderer {
	return &DocxRenderer{}
}

// Render builds the document in memory and returns the .docx bytes
func (r *DocxRenderer) Render(rec *domain.QuotationRecord) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	p := doc.AddParagraph().Justification("center")
	addRun(p, "御 見 積 書").Bold().Size(sizeTitle)

	doc.AddParagraph()
	addRun(doc.AddParagraph().Justification("end"), "発行日： "+rec.IssueDate)

	doc.AddParagraph()
	p = doc.AddParagraph()
	addRun(p, rec.ClientName).Bold()
	addRun(p, " 様")
	addRun(doc.AddParagraph(), "（ご担当者様名：【ご担当者名】）")
	doc.AddParagraph()

	addRun(doc.AddParagraph().Justification("end"), "【発行元】").Bold()
	p = doc.AddParagraph().Justification("end")
	for _, line := range rec.Issuer.Lines() {
		run := addRun(p, line)
		run.Children = append(run.Children, &docx.BarterRabbet{})
	}
	doc.AddParagraph()

	doc.AddParagraph()
	p = doc.AddParagraph()
	addRun(p, "下記の通りお見積り申し上げます。").Bold()
	addRun(p, fmt.Sprintf("\n\nお見積金額合計: %s (税込)", FormatYen(rec.TotalInclTax))).Bold().Size(sizeTotal)
	doc.AddParagraph()

	addRun(doc.AddParagraph(), "■ 有効期限: "+rec.ValidUntil)
	addRun(doc.AddParagraph(), "■ 納　　期: "+rec.DeliveryDate)

	doc.AddParagraph()
	addRun(doc.AddParagraph(), "■ 見積明細").Bold().Size(sizeSubheading)

	if len(rec.Items) > 0 {
		addItemsTable(doc, rec.Items)
	}

	doc.AddParagraph()
	addRun(doc.AddParagraph(), "【小計 (税抜)】: "+FormatYen(rec.SubtotalExclTax))
	addRun(doc.AddParagraph(), "【消費税 (10%)】: "+FormatYen(rec.TaxAmount()))
	addRun(doc.AddParagraph(), "【合計金額 (税込)】: "+FormatYen(rec.TotalInclTax)).Bold()

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func addItemsTable(doc *docx.Docx, items []domain.LineItem) {
	tbl := doc.AddTable(len(items)+1, len(tableHeaders), 0, nil).Justification("center")

	for i, h := range tableHeaders {
		addRun(tbl.TableRows[0].TableCells[i].AddParagraph(), h).Bold()
	}
	for n, item := range items {
		cells := tbl.TableRows[n+1].TableCells
		values := []string{
			item.Description,
			FormatYen(item.UnitPrice),
			item.Quantity.String(),
			item.Unit,
			FormatYen(item.Amount()),
		}
		for i, v := range values {
			addRun(cells[i].AddParagraph(), v)
		}
	}
}

// addRun appends text in the document font; leading and trailing spaces are kept
func addRun(p *docx.Paragraph, text string) *docx.Run {
	run := p.AddText(text).Font(fontName, fontName, fontName, "eastAsia").Size(sizeBody)
	for _, c := range run.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	return run
}
