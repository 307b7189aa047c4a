// Package main provides a command-line tool for working with AVFX effect files.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goopsie/vfxFileTools/pkg/archive"
	"github.com/goopsie/vfxFileTools/pkg/avfx"
	"github.com/goopsie/vfxFileTools/pkg/curveplot"
	"github.com/goopsie/vfxFileTools/pkg/verify"
	"github.com/goopsie/vfxFileTools/pkg/workspace"
)

var (
	mode         string
	inputPath    string
	outputPath   string
	nodeSpec     string
	dbPath       string
	docName      string
	level        int
	withDeps     bool
	strictRefs   bool
	asDocument   bool
	packOutput   bool
	verifyOnSave bool
	cssOutput    bool
)

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: verify, info, export, pack, unpack, save, load, list, plot, colors")
	flag.StringVar(&inputPath, "input", "", "Input effect file (.avfx or bundle)")
	flag.StringVar(&outputPath, "output", "", "Output file")
	flag.StringVar(&nodeSpec, "node", "", "Node selector, e.g. Ptcl[0] or Emitter[2]")
	flag.StringVar(&dbPath, "db", "vfxtools.db", "Workspace database path")
	flag.StringVar(&docName, "name", "", "Workspace document name (default: input file name)")
	flag.IntVar(&level, "level", archive.DefaultCompressionLevel, "zstd compression level for bundles")
	flag.BoolVar(&withDeps, "deps", true, "Include dependencies when exporting")
	flag.BoolVar(&strictRefs, "strict", false, "Fail on references outside the exported set")
	flag.BoolVar(&asDocument, "document", false, "Export as a complete AVFX document")
	flag.BoolVar(&packOutput, "pack", false, "Write export output as a bundle")
	flag.BoolVar(&verifyOnSave, "verify", true, "Round-trip check documents saved to the workspace")
	flag.BoolVar(&cssOutput, "css", false, "Output colour curves as CSS custom properties")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	switch mode {
	case "verify":
		return runVerify()
	case "info":
		return runInfo()
	case "export":
		return runExport()
	case "pack":
		return runPack()
	case "unpack":
		return runUnpack()
	case "save":
		return runSave()
	case "load":
		return runLoad()
	case "list":
		return runList()
	case "plot":
		return runPlot()
	case "colors":
		return runColors()
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func validateFlags() error {
	if mode == "" {
		return fmt.Errorf("mode is required")
	}

	switch mode {
	case "verify", "info", "colors":
		if inputPath == "" {
			return fmt.Errorf("%s mode requires -input", mode)
		}
	case "export", "plot":
		if inputPath == "" || outputPath == "" || nodeSpec == "" {
			return fmt.Errorf("%s mode requires -input, -output and -node", mode)
		}
	case "pack", "unpack":
		if inputPath == "" || outputPath == "" {
			return fmt.Errorf("%s mode requires -input and -output", mode)
		}
	case "save":
		if inputPath == "" {
			return fmt.Errorf("save mode requires -input")
		}
		if docName == "" {
			docName = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		}
	case "load":
		if docName == "" || outputPath == "" {
			return fmt.Errorf("load mode requires -name and -output")
		}
	case "list":
	default:
		return fmt.Errorf("mode must be one of verify, info, export, pack, unpack, save, load, list, plot, colors")
	}

	return nil
}

func readDocument() (*avfx.Root, []byte, error) {
	data, err := archive.ReadFile(inputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	root, warnings, err := avfx.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	printWarnings(warnings)
	return root, data, nil
}

func printWarnings(warnings []avfx.Warning) {
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func runVerify() error {
	data, err := archive.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	ok, diffs, err := verify.RoundTrip(data)
	if err != nil {
		return err
	}
	for _, d := range diffs {
		fmt.Println(d)
	}
	if !ok {
		return fmt.Errorf("round trip differs in %d places", len(diffs))
	}

	fmt.Printf("Round trip OK: %d bytes, digest %016x\n", len(data), verify.Digest(data))
	return nil
}

func runInfo() error {
	root, data, err := readDocument()
	if err != nil {
		return err
	}

	fmt.Printf("Document: %d bytes, digest %016x\n", len(data), verify.Digest(data))
	for _, k := range avfx.Kinds() {
		fmt.Printf("  %-10s %d\n", k, len(root.Nodes(k)))
	}
	if n := len(root.Trailing); n > 0 {
		fmt.Printf("  %d trailing chunks kept as raw\n", n)
	}
	printWarnings(root.Validate())
	return nil
}

func runExport() error {
	root, _, err := readDocument()
	if err != nil {
		return err
	}
	n, err := selectNode(root, nodeSpec)
	if err != nil {
		return err
	}

	opts := []avfx.ExportOption{avfx.WithDependencies(withDeps)}
	if strictRefs {
		opts = append(opts, avfx.WithStrictReferences())
	}
	if asDocument {
		opts = append(opts, avfx.WithDocument())
	}

	out, warnings, err := avfx.ExportSubgraph([]avfx.Node{n}, opts...)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	printWarnings(warnings)

	if packOutput {
		if err := archive.WriteFile(outputPath, out, archive.WithCompressionLevel(level)); err != nil {
			return err
		}
	} else if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	count, err := exportedNodes(out, asDocument)
	if err != nil {
		return fmt.Errorf("read back export: %w", err)
	}
	fmt.Printf("Exported %s (%d nodes) to %s\n", nodeSpec, count, outputPath)
	return nil
}

func runPack() error {
	data, err := archive.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := archive.WriteFile(outputPath, data, archive.WithCompressionLevel(level)); err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return err
	}
	fmt.Printf("Packed %d bytes into %d\n", len(data), info.Size())
	return nil
}

func runUnpack() error {
	data, err := archive.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Unpacked %d bytes to %s\n", len(data), outputPath)
	return nil
}

func openWorkspace() (*workspace.Store, error) {
	opts := []workspace.Option{workspace.WithCompressionLevel(level)}
	if verifyOnSave {
		opts = append(opts, workspace.WithVerify())
	}
	return workspace.Open(dbPath, opts...)
}

func runSave() error {
	root, _, err := readDocument()
	if err != nil {
		return err
	}

	store, err := openWorkspace()
	if err != nil {
		return err
	}
	defer store.Close()

	meta, warnings, err := store.Save(docName, root, inputPath)
	if err != nil {
		return err
	}
	printWarnings(warnings)

	fmt.Printf("Saved %s: %d bytes (%d packed), verified=%t\n", meta.Name, meta.Size, meta.Packed, meta.Verified)
	for k, v := range meta.Renames {
		fmt.Printf("  renumbered %s -> %d\n", k, v)
	}
	return nil
}

func runLoad() error {
	store, err := openWorkspace()
	if err != nil {
		return err
	}
	defer store.Close()

	_, meta, warnings, err := store.Load(docName)
	if err != nil {
		return err
	}
	printWarnings(warnings)

	data, err := store.Bytes(docName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("Loaded %s (saved %s from %s) to %s\n", meta.Name, meta.SavedAt.Format("2006-01-02 15:04:05"), meta.Source, outputPath)
	return nil
}

func runList() error {
	store, err := openWorkspace()
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List()
	if err != nil {
		return err
	}
	for _, m := range list {
		fmt.Printf("%-24s %8d bytes  %s  verified=%t\n", m.Name, m.Size, m.SavedAt.Format("2006-01-02 15:04"), m.Verified)
	}
	fmt.Printf("%d documents\n", len(list))
	return nil
}

func runPlot() error {
	root, _, err := readDocument()
	if err != nil {
		return err
	}
	n, err := selectNode(root, nodeSpec)
	if err != nil {
		return err
	}

	series := curvesOf(n)
	if len(series) == 0 {
		return fmt.Errorf("%s has no curves", nodeSpec)
	}

	var buf bytes.Buffer
	if _, err := curveplot.Render(&buf, series); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("Plotted %d curves of %s to %s\n", len(series), nodeSpec, outputPath)
	return nil
}

func runColors() error {
	root, _, err := readDocument()
	if err != nil {
		return err
	}

	var count int
	avfx.Walk(root, func(path string, it avfx.Item) {
		c, ok := it.(*avfx.Curve)
		if !ok || !c.IsColor() || !c.IsAssigned() || len(c.Keys.Keys) == 0 {
			return
		}
		count++
		g := c.Gradient()
		if cssOutput {
			fmt.Print(g.ToCSS(cssName(path)))
			return
		}
		fmt.Printf("%s: %d keys\n", path, len(c.Keys.Keys))
		for _, s := range g.Stops {
			fmt.Printf("  %6.0f  %s  %s\n", s.Pos, s.Color.Hex(), s.Color)
		}
	})

	if !cssOutput {
		fmt.Printf("%d colour curves\n", count)
	}
	return nil
}
