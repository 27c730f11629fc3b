package catalog

import (
	"fmt"
	"io"
	"strings"
)

// WriteSQL escribe un script idempotente (ON CONFLICT) que carga el catálogo en Postgres.
// El stock de apertura entra como movimiento INBOUND para que el libro cuadre con current_stock.
func (c *Catalog) WriteSQL(w io.Writer) error {
	b := &strings.Builder{}
	b.WriteString("-- Catálogo de planta (generado por seed_catalog)\n\n")

	if len(c.Products) > 0 {
		b.WriteString("-- 1. Productos\n")
		b.WriteString("INSERT INTO products (code, name, unit_measure) VALUES\n")
		for i, p := range c.Products {
			fmt.Fprintf(b, "  ('%s', '%s', '%s')%s\n", escapeSQL(p.Code), escapeSQL(p.Name), escapeSQL(p.Unit), sep(i, len(c.Products)))
		}
		b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, unit_measure = EXCLUDED.unit_measure;\n\n")
	}

	if len(c.Equipment) > 0 {
		b.WriteString("-- 2. Máquinas\n")
		b.WriteString("INSERT INTO equipment (id, name, line, active) VALUES\n")
		for i, e := range c.Equipment {
			fmt.Fprintf(b, "  ('%s', '%s', '%s', %t)%s\n", escapeSQL(e.ID), escapeSQL(e.Name), escapeSQL(e.Line), e.IsActive(), sep(i, len(c.Equipment)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, line = EXCLUDED.line, active = EXCLUDED.active;\n\n")
	}

	if len(c.Materials) > 0 {
		b.WriteString("-- 3. Materiales (stock inicial vía libro de movimientos)\n")
		for _, m := range c.Materials {
			opening, err := m.Opening()
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "INSERT INTO materials (code, name, category, unit, current_stock) VALUES ('%s', '%s', '%s', '%s', 0)\n",
				escapeSQL(m.Code), escapeSQL(m.Name), escapeSQL(m.Category), escapeSQL(m.Unit))
			b.WriteString("ON CONFLICT (code) DO NOTHING;\n")
			if opening.IsPositive() {
				fmt.Fprintf(b, "INSERT INTO material_transactions (id, material_code, type, quantity, note)\n")
				fmt.Fprintf(b, "SELECT gen_random_uuid(), '%s', 'INBOUND', %s, 'saldo inicial'\n", escapeSQL(m.Code), opening.String())
				fmt.Fprintf(b, "WHERE NOT EXISTS (SELECT 1 FROM material_transactions WHERE material_code = '%s');\n", escapeSQL(m.Code))
				fmt.Fprintf(b, "UPDATE materials SET current_stock = (\n")
				fmt.Fprintf(b, "  SELECT COALESCE(SUM(CASE WHEN type = 'INBOUND' THEN quantity ELSE -quantity END), 0)\n")
				fmt.Fprintf(b, "  FROM material_transactions WHERE material_code = '%s') WHERE code = '%s';\n", escapeSQL(m.Code), escapeSQL(m.Code))
			}
		}
		b.WriteString("\n")
	}

	if len(c.BOM) > 0 {
		b.WriteString("-- 4. Lista de materiales\n")
		b.WriteString("INSERT INTO bom_lines (product_code, material_code, qty_per_unit) VALUES\n")
		for i, l := range c.BOM {
			qty, err := l.Qty()
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "  ('%s', '%s', %s)%s\n", escapeSQL(l.Product), escapeSQL(l.Material), qty.String(), sep(i, len(c.BOM)))
		}
		b.WriteString("ON CONFLICT (product_code, material_code) DO UPDATE SET qty_per_unit = EXCLUDED.qty_per_unit;\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "'", "''")
}
