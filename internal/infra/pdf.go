package infra

// pdf.go — sale receipt ("comprobante") rendering with go-pdf/fpdf.
// Receipt-size page with:
//   - Business name header
//   - Invoice code, date, customer and sales agent
//   - Item table (code, product name, quantity, subtotal)
//   - Bold total
//
// Files are saved to storagePath/comprobante_{dia}_{codigo}.pdf.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"superbravo/internal/model"

	"github.com/go-pdf/fpdf"
)

// WriteComprobantePDF renders the receipt of venta into w. Dates are printed
// in loc.
func WriteComprobantePDF(w io.Writer, venta *model.Venta, negocio string, loc *time.Location) error {
	pdf := renderComprobante(venta, negocio, loc)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}

// GenerateComprobantePDF writes the receipt to storagePath (created if
// needed) and returns the file path.
func GenerateComprobantePDF(venta *model.Venta, negocio string, loc *time.Location, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("comprobante_%s_%s.pdf", venta.DiaFactura, venta.CodigoFactura)
	filePath := filepath.Join(storagePath, fileName)

	pdf := renderComprobante(venta, negocio, loc)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func renderComprobante(venta *model.Venta, negocio string, loc *time.Location) *fpdf.Fpdf {
	if loc == nil {
		loc = time.Local
	}

	// 80mm wide thermal-style receipt; height grows with the item count.
	alto := 110.0 + float64(len(venta.Items))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comprobante de venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Invoice / customer ───────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("Factura N° "+venta.CodigoFactura), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venta.CreatedAt.In(loc).Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Cliente: "+venta.ClienteNombre), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Carnet: "+venta.ClienteCarnet), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Dirección: "+venta.ClienteDireccion), "", 1, "L", false, 0, "")
	gestor := model.GestorNinguno
	if venta.Gestor != nil {
		gestor = *venta.Gestor
	}
	pdf.CellFormat(contentW, 4, tr("Gestor: "+gestor), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.18 // code
	col2 := contentW * 0.42 // product name
	col3 := contentW * 0.12 // qty
	col4 := contentW * 0.28 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, tr("Código"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range venta.Items {
		pdf.CellFormat(col1, 5, tr(truncar(item.Codigo, 8)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, tr(truncar(item.Nombre, 20)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, fmt.Sprintf("x%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+item.Subtotal().StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2+col3, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "$"+venta.PrecioTotal.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")
	return pdf
}

func truncar(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
