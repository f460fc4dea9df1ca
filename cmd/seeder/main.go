package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Deterministic sample data: re-running the seeder always produces the same
// files, so fingerprint-based change detection sees them as unchanged.
var minerals = []struct {
	name     string
	hardness string
	luster   string
}{
	{"talc", "1", "pearly"},
	{"gypsum", "2", "silky"},
	{"calcite", "3", "vitreous"},
	{"fluorite", "4", "vitreous"},
	{"apatite", "5", "vitreous"},
	{"orthoclase", "6", "vitreous"},
	{"quartz", "7", "vitreous"},
	{"topaz", "8", "vitreous"},
	{"corundum", "9", "adamantine"},
	{"diamond", "10", "adamantine"},
}

var trees = []struct {
	name    string
	family  string
	habitat string
}{
	{"white oak", "fagaceae", "temperate forest"},
	{"sugar maple", "sapindaceae", "temperate forest"},
	{"coast redwood", "cupressaceae", "coastal fog belt"},
	{"baobab", "malvaceae", "savanna"},
	{"mangrove", "rhizophoraceae", "tidal swamp"},
	{"scots pine", "pinaceae", "boreal forest"},
	{"kapok", "malvaceae", "tropical rainforest"},
	{"quaking aspen", "salicaceae", "montane"},
	{"river birch", "betulaceae", "riparian"},
	{"joshua tree", "asparagaceae", "desert"},
}

var (
	outDir = flag.String("out", "./seed_data", "directory to write sample CSV files into")
	copies = flag.Int("copies", 1, "number of numbered copies per sample file")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func mineralRows() [][]string {
	rows := make([][]string, len(minerals))
	for i, m := range minerals {
		rows[i] = []string{m.name, m.hardness, m.luster}
	}
	return rows
}

func treeRows() [][]string {
	rows := make([][]string, len(trees))
	for i, t := range trees {
		rows[i] = []string{t.name, t.family, t.habitat}
	}
	return rows
}

func main() {
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		panic(err)
	}

	for i := 1; i <= *copies; i++ {
		suffix := ""
		if *copies > 1 {
			suffix = "_" + strconv.Itoa(i)
		}

		mineralPath := filepath.Join(*outDir, fmt.Sprintf("minerals%s.csv", suffix))
		if err := writeCSV(mineralPath, []string{"name", "hardness", "luster"}, mineralRows()); err != nil {
			panic(err)
		}
		slog.Info("wrote sample file", "path", mineralPath, "rows", len(minerals))

		treePath := filepath.Join(*outDir, fmt.Sprintf("trees%s.csv", suffix))
		if err := writeCSV(treePath, []string{"name", "family", "habitat"}, treeRows()); err != nil {
			panic(err)
		}
		slog.Info("wrote sample file", "path", treePath, "rows", len(trees))
	}
}
