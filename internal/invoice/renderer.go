package invoice

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/fishgalaxy/backend/internal/domain"
)

// CompanyInfo — реквизиты продавца в шапке счёта.
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
	Mobile  string
}

// Renderer отрисовывает PDF-счёт по заказу.
type Renderer struct {
	company CompanyInfo
}

// NewRenderer конструирует рендерер счетов с реквизитами продавца.
func NewRenderer(company CompanyInfo) *Renderer {
	if company.Name == "" {
		company.Name = "Fish Galaxy"
	}
	return &Renderer{company: company}
}

// Render отрисовывает счёт: шапка продавца, реквизиты покупателя, таблица
// позиций по цене со скидкой и итоговый блок. Возвращает PDF-байты.
func (r *Renderer) Render(order domain.Order, customer domain.Customer) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	r.header(pdf)
	r.billTo(pdf, order, customer)
	r.lines(pdf, order)
	r.totals(pdf, order)
	r.footer(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, r.company.Name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if r.company.Address != "" {
		pdf.CellFormat(0, 5, r.company.Address, "", 1, "L", false, 0, "")
	}
	contact := r.company.Email
	if r.company.Mobile != "" {
		if contact != "" {
			contact += " | "
		}
		contact += r.company.Mobile
	}
	if contact != "" {
		pdf.CellFormat(0, 5, contact, "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)
}

func (r *Renderer) billTo(pdf *fpdf.Fpdf, order domain.Order, customer domain.Customer) {
	// Реквизиты берутся из снапшота адреса в заказе: профиль покупателя
	// мог измениться после оформления.
	name := order.Address.Name
	if name == "" {
		name = customer.Name
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Bill To:", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, name, "", 1, "L", false, 0, "")
	if order.Address.ShopName != "" {
		pdf.CellFormat(0, 5, order.Address.ShopName, "", 1, "L", false, 0, "")
	}
	if order.Address.Address != "" {
		pdf.CellFormat(0, 5, order.Address.Address, "", 1, "L", false, 0, "")
	}
	if order.Address.Pincode != 0 {
		pdf.CellFormat(0, 5, fmt.Sprintf("PIN: %d", order.Address.Pincode), "", 1, "L", false, 0, "")
	}
	if order.Address.Mobile != "" {
		pdf.CellFormat(0, 5, order.Address.Mobile, "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Invoice No: %d", order.OrderID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Order Date: %s", order.CreatedAt.Format("02 Jan 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

var lineWidths = [5]float64{15, 85, 30, 20, 30}

func (r *Renderer) lines(pdf *fpdf.Fpdf, order domain.Order) {
	headers := [5]string{"S.No", "Product", "Price", "Qty", "Amount"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		pdf.CellFormat(lineWidths[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, line := range order.Products {
		// Цена в счёте — актуальная цена со скидкой на момент заказа.
		amount := line.TotalMinor
		if amount == 0 {
			amount = line.OfferMinor * int64(line.Quantity)
		}
		pdf.CellFormat(lineWidths[0], 6, fmt.Sprintf("%d", i+1), "1", 0, "L", false, 0, "")
		pdf.CellFormat(lineWidths[1], 6, line.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(lineWidths[2], 6, formatMinor(line.OfferMinor), "1", 0, "R", false, 0, "")
		pdf.CellFormat(lineWidths[3], 6, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(lineWidths[4], 6, formatMinor(amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

func (r *Renderer) totals(pdf *fpdf.Fpdf, order domain.Order) {
	labelWidth := lineWidths[0] + lineWidths[1] + lineWidths[2] + lineWidths[3]

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelWidth, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(lineWidths[4], 6, value, "1", 1, "R", false, 0, "")
	}

	row("Sub Total", formatMinor(order.SubTotalMinor), false)
	if order.TaxMinor > 0 {
		row("Tax", formatMinor(order.TaxMinor), false)
	}
	if order.ShippingMinor > 0 {
		row("Shipping", formatMinor(order.ShippingMinor), false)
	}
	row("Total", formatMinor(order.TotalMinor), true)
}

func (r *Renderer) footer(pdf *fpdf.Fpdf) {
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "This is a computer generated invoice and does not require a signature.", "", 1, "C", false, 0, "")
}

// formatMinor печатает сумму в основных единицах из минорных.
func formatMinor(minor int64) string {
	return fmt.Sprintf("Rs. %.2f", float64(minor)/100)
}

var _ domain.InvoiceRenderer = (*Renderer)(nil)
