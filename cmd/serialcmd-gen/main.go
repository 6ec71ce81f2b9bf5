// Command serialcmd-gen generates typed Go bindings and a C header from a
// YAML command catalogue, so host and firmware share one definition.
//
// Usage:
//
//	serialcmd-gen -catalog arduino.yaml -output ./pkg/devices/board [-package board] [-header firmware/commands.h]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"

	"github.com/serialcmd/serialcmd-go/pkg/catalog"
)

func main() {
	catalogPath := flag.String("catalog", "", "Path to the catalogue YAML")
	outputDir := flag.String("output", "", "Output directory for the generated Go file")
	pkg := flag.String("package", "", "Go package name (default: derived from the catalogue name)")
	header := flag.String("header", "", "Output path for the C header (optional)")
	flag.Parse()

	if *catalogPath == "" || (*outputDir == "" && *header == "") {
		fmt.Fprintln(os.Stderr, "Usage: serialcmd-gen -catalog <path> -output <dir> [-package <name>] [-header <path>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*catalogPath, *outputDir, *pkg, *header); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(catalogPath, outputDir, pkg, header string) error {
	c, err := catalog.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("loading catalogue: %w", err)
	}
	d, err := buildData(c, catalogPath, pkg)
	if err != nil {
		return fmt.Errorf("preparing %s: %w", c.Name, err)
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
		outPath := filepath.Join(outputDir, cLower(c.Name)+"_gen.go")
		if err := writeFormatted(outPath, GenerateGo(d)); err != nil {
			return fmt.Errorf("writing %s: %w", filepath.Base(outPath), err)
		}
		fmt.Printf("  generated %s\n", outPath)
	}

	if header != "" {
		if err := os.MkdirAll(filepath.Dir(header), 0o755); err != nil {
			return fmt.Errorf("creating header dir: %w", err)
		}
		if err := os.WriteFile(header, []byte(GenerateHeader(d)), 0o644); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		fmt.Printf("  generated %s\n", header)
	}
	return nil
}

// writeFormatted formats Go source code with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Write unformatted so you can debug the generator output
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}
