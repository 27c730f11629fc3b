// seed_catalog genera un script SQL idempotente con el catálogo de planta
// (productos, máquinas, materiales con stock inicial y BOM) a partir de un YAML.
//
// Uso: go run ./cmd/seed_catalog [--latin1] [ruta/catalog.yaml] [salida.sql]
// Por defecto lee config/seed.example.yaml y escribe config/seed_catalog.sql.
// --latin1 decodifica archivos exportados en ISO-8859-1.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/mes-dispatch/internal/infrastructure/catalog"
)

func main() {
	var (
		latin1 bool
		args   []string
	)
	for _, a := range os.Args[1:] {
		if a == "--latin1" {
			latin1 = true
			continue
		}
		args = append(args, a)
	}

	moduleRoot := findModuleRoot()
	inPath := filepath.Join(moduleRoot, "config", "seed.example.yaml")
	outPath := filepath.Join(moduleRoot, "config", "seed_catalog.sql")
	if len(args) > 0 {
		inPath = args[0]
	}
	if len(args) > 1 {
		outPath = args[1]
	}

	c, err := catalog.LoadFile(inPath, latin1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar catálogo: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := c.WriteSQL(out); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generado %s: %d productos, %d máquinas, %d materiales, %d líneas de BOM\n",
		outPath, len(c.Products), len(c.Equipment), len(c.Materials), len(c.BOM))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
