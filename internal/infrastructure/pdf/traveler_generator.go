// Package pdf genera la hoja de ruta (traveler) de una orden de trabajo.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + código   │  N° Orden + Fecha             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORDEN: Línea / Meta / Estado / Máquina                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Material | Descripción | Unidad | x Unidad | Total   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID de la orden                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/mes-dispatch/internal/application/workorder"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// TravelerGenerator implementa workorder.TravelerPDFGenerator usando Maroto v2.
type TravelerGenerator struct {
	plant string
}

var _ workorder.TravelerPDFGenerator = (*TravelerGenerator)(nil)

// NewTravelerGenerator construye el generador; plant aparece como autor del documento.
func NewTravelerGenerator(plant string) *TravelerGenerator {
	return &TravelerGenerator{plant: plant}
}

// GenerateTraveler genera el PDF y devuelve sus bytes.
func (g *TravelerGenerator) GenerateTraveler(
	_ context.Context,
	wo *entity.WorkOrder,
	product *entity.Product,
	lines []workorder.TravelerLine,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Orden de trabajo %d", wo.Seq), true).
		WithAuthor(nonEmpty(g.plant, "MES"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(wo, product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(orderRow(wo))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(lines)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(qrRow(wo))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: producto (izq) y número de orden + fecha de creación (der).
func headerRow(wo *entity.WorkOrder, product *entity.Product) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(product.Name, product.Code), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Producto: "+product.Code, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORDEN DE TRABAJO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %d", wo.Seq), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Creada: "+wo.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// orderRow: línea destino, meta, avance y máquina asignada.
func orderRow(wo *entity.WorkOrder) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DE LA ORDEN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Línea: %s   |   Meta: %d   |   Avance: %d   |   Estado: %s   |   Máquina: %s",
				wo.TargetLine,
				wo.TargetQty,
				wo.CurrentQty,
				wo.Status,
				nonEmpty(wo.AssignedMachine, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de materiales.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Material", 2, align.Left),
		h("Descripción", 5, align.Left),
		h("Unidad", 1, align.Center),
		h("x Unidad", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// tableRows: una fila por requerimiento de la BOM.
func tableRows(lines []workorder.TravelerLine) []core.Row {
	if len(lines) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Producto sin lista de materiales: no hay consumo por backflush.", props.Text{
				Size: 8, Top: 1, Color: colorGray,
			}),
		))}
	}
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(l.MaterialCode, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(l.MaterialName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(nonEmpty(l.Unit, "—"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.QtyPerUnit.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(l.TotalQty.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// qrRow: QR con el ID de la orden para escanear en la estación.
func qrRow(wo *entity.WorkOrder) core.Row {
	return row.New(45).Add(
		col.New(4).Add(code.NewQr(wo.ID, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Escanee el código en la estación para\nidentificar la orden.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(wo.ID, props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 22, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
