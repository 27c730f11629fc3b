// Package catalog carga el catálogo de planta (productos, máquinas, materiales y BOM)
// desde un archivo YAML. Lo usan el almacén en memoria y el generador de seeds SQL.
package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Catalog contenido del archivo de catálogo.
type Catalog struct {
	Products  []Product   `yaml:"products"`
	Equipment []Equipment `yaml:"equipment"`
	Materials []Material  `yaml:"materials"`
	BOM       []BOMLine   `yaml:"bom"`
}

// Product producto terminado.
type Product struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

// Equipment máquina; Active por defecto true.
type Equipment struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Line   string `yaml:"line"`
	Active *bool  `yaml:"active"`
}

// Material materia prima; OpeningStock se registra como movimiento INBOUND.
type Material struct {
	Code         string `yaml:"code"`
	Name         string `yaml:"name"`
	Category     string `yaml:"category"`
	Unit         string `yaml:"unit"`
	OpeningStock string `yaml:"openingStock"`
}

// BOMLine cantidad de material por unidad de producto.
type BOMLine struct {
	Product    string `yaml:"product"`
	Material   string `yaml:"material"`
	QtyPerUnit string `yaml:"qtyPerUnit"`
}

// Seeder destino de la carga (implementado por el almacén en memoria).
type Seeder interface {
	AddProduct(p entity.Product)
	AddEquipment(e entity.Equipment)
	AddMaterial(m entity.Material, opening decimal.Decimal)
	AddBOMLine(l entity.BOMLine)
}

// Load decodifica y valida un catálogo.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile abre path y lo carga. Con latin1=true el archivo se decodifica como ISO-8859-1
// (exportaciones del ERP de planta).
func LoadFile(path string, latin1 bool) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	return Load(r)
}

// Validate revisa códigos únicos y que la BOM solo referencie productos y materiales conocidos.
func (c *Catalog) Validate() error {
	products := make(map[string]bool, len(c.Products))
	for _, p := range c.Products {
		code := strings.TrimSpace(p.Code)
		if code == "" {
			return fmt.Errorf("catalog: producto sin código")
		}
		if products[code] {
			return fmt.Errorf("catalog: producto %s duplicado", code)
		}
		products[code] = true
	}
	machines := make(map[string]bool, len(c.Equipment))
	for _, e := range c.Equipment {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return fmt.Errorf("catalog: máquina sin id")
		}
		if machines[id] {
			return fmt.Errorf("catalog: máquina %s duplicada", id)
		}
		machines[id] = true
	}
	materials := make(map[string]bool, len(c.Materials))
	for _, m := range c.Materials {
		code := strings.TrimSpace(m.Code)
		if code == "" {
			return fmt.Errorf("catalog: material sin código")
		}
		if materials[code] {
			return fmt.Errorf("catalog: material %s duplicado", code)
		}
		if _, err := m.Opening(); err != nil {
			return err
		}
		materials[code] = true
	}
	lines := make(map[string]bool, len(c.BOM))
	for _, l := range c.BOM {
		key := strings.TrimSpace(l.Product) + "/" + strings.TrimSpace(l.Material)
		if lines[key] {
			return fmt.Errorf("catalog: línea de bom %s duplicada", key)
		}
		lines[key] = true
		if !products[strings.TrimSpace(l.Product)] {
			return fmt.Errorf("catalog: bom referencia producto desconocido %q", l.Product)
		}
		if !materials[strings.TrimSpace(l.Material)] {
			return fmt.Errorf("catalog: bom referencia material desconocido %q", l.Material)
		}
		qty, err := l.Qty()
		if err != nil {
			return err
		}
		if !qty.GreaterThan(decimal.Zero) {
			return fmt.Errorf("catalog: bom %s/%s qtyPerUnit debe ser mayor que cero", l.Product, l.Material)
		}
	}
	return nil
}

// Opening stock inicial (cero si no se informa).
func (m Material) Opening() (decimal.Decimal, error) {
	if strings.TrimSpace(m.OpeningStock) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(m.OpeningStock))
	if err != nil {
		return decimal.Zero, fmt.Errorf("catalog: material %s openingStock %q: %w", m.Code, m.OpeningStock, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("catalog: material %s openingStock negativo", m.Code)
	}
	return d, nil
}

// Qty cantidad por unidad.
func (l BOMLine) Qty() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(l.QtyPerUnit))
	if err != nil {
		return decimal.Zero, fmt.Errorf("catalog: bom %s/%s qtyPerUnit %q: %w", l.Product, l.Material, l.QtyPerUnit, err)
	}
	return d, nil
}

// IsActive Active con default true.
func (e Equipment) IsActive() bool {
	return e.Active == nil || *e.Active
}

// Apply carga el catálogo (ya validado) en el destino.
func (c *Catalog) Apply(s Seeder) {
	for _, p := range c.Products {
		s.AddProduct(entity.Product{Code: strings.TrimSpace(p.Code), Name: p.Name, UnitMeasure: p.Unit})
	}
	for _, e := range c.Equipment {
		s.AddEquipment(entity.Equipment{ID: strings.TrimSpace(e.ID), Name: e.Name, Line: e.Line, Active: e.IsActive()})
	}
	for _, m := range c.Materials {
		opening, _ := m.Opening()
		s.AddMaterial(entity.Material{
			Code:     strings.TrimSpace(m.Code),
			Name:     m.Name,
			Category: m.Category,
			Unit:     m.Unit,
		}, opening)
	}
	for _, l := range c.BOM {
		qty, _ := l.Qty()
		s.AddBOMLine(entity.BOMLine{
			ProductCode:  strings.TrimSpace(l.Product),
			MaterialCode: strings.TrimSpace(l.Material),
			QtyPerUnit:   qty,
		})
	}
}
