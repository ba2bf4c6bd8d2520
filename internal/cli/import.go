package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mrlokans/bookstore-assistant/internal/config"
	"github.com/mrlokans/bookstore-assistant/internal/entities"
	"github.com/mrlokans/bookstore-assistant/internal/entrypoint"
	"github.com/mrlokans/bookstore-assistant/internal/importers"
	"github.com/mrlokans/bookstore-assistant/internal/services"
)

// ImportCommand imports a catalog or sales spreadsheet from disk into the
// configured store.
type ImportCommand struct {
	Kind importers.Mode

	FilePath     string
	DatabasePath string
	StoreBackend string
	BadgerPath   string
	SheetName    string
	Date         string // sales only
	Mode         string // sales only
	DryRun       bool
	Verbose      bool

	cfg *config.Config
	out io.Writer
}

func NewCatalogImportCommand() *ImportCommand {
	return &ImportCommand{Kind: importers.ModeCatalog, out: os.Stdout}
}

func NewSalesImportCommand() *ImportCommand {
	return &ImportCommand{Kind: importers.ModeSales, out: os.Stdout}
}

func (cmd *ImportCommand) name() string {
	return string(cmd.Kind) + "-import"
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	if cmd.cfg == nil {
		cmd.cfg = config.NewConfig()
	}
	fs := flag.NewFlagSet(cmd.name(), flag.ContinueOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Spreadsheet to import: .csv, .tsv, .txt, .xlsx, .xlsm or .json (required)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")
	fs.StringVar(&cmd.StoreBackend, "store", string(cmd.cfg.Store.Backend), "Collection store: sqlite or badger")
	fs.StringVar(&cmd.BadgerPath, "badger", cmd.cfg.Store.BadgerPath, "Badger directory (with -store badger)")
	fs.StringVar(&cmd.SheetName, "sheet", cmd.cfg.Import.SheetName, "Workbook sheet to read (default: first sheet)")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would change without saving")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print the detected header columns")
	if cmd.Kind == importers.ModeSales {
		fs.StringVar(&cmd.Date, "date", time.Now().Format(entities.DateLayout), "Sales day (YYYY-MM-DD)")
		fs.StringVar(&cmd.Mode, "mode", cmd.cfg.Import.DefaultSalesMode, "How the day's total is updated: replace or add")
	}

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s -file <path> [options]\n\n", os.Args[0], cmd.name())
		if cmd.Kind == importers.ModeSales {
			fmt.Fprintf(os.Stderr, "Record one day of sales and subtract the sold units from stock.\n\n")
		} else {
			fmt.Fprintf(os.Stderr, "Merge a catalog spreadsheet into the stored catalog.\n\n")
		}
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		if cmd.Kind == importers.ModeSales {
			fmt.Fprintf(os.Stderr, "  %s sales-import -file vendas.xlsx -date 2024-03-15\n", os.Args[0])
			fmt.Fprintf(os.Stderr, "  %s sales-import -file tarde.csv -date 2024-03-15 -mode add\n", os.Args[0])
		} else {
			fmt.Fprintf(os.Stderr, "  %s catalog-import -file catalogo.xlsx\n", os.Args[0])
			fmt.Fprintf(os.Stderr, "  %s catalog-import -file sinopses.csv -dry-run -verbose\n", os.Args[0])
		}
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if cmd.Kind == importers.ModeSales && !entities.SalesMode(cmd.Mode).Valid() {
		return fmt.Errorf("invalid -mode %q: use replace or add", cmd.Mode)
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	fmt.Fprintf(cmd.out, "%s import\n", cmd.Kind)
	if cmd.DryRun {
		fmt.Fprintln(cmd.out, "DRY RUN MODE - No changes will be made")
	}

	sheet, err := cmd.readSheet()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "File: %s (%d rows)\n", cmd.FilePath, len(sheet.Rows))

	if cmd.Verbose {
		cmd.printHeader(sheet)
	}

	cfg := *cmd.cfg
	cfg.Database.Path = cmd.DatabasePath
	cfg.Store.Backend = config.StoreBackend(cmd.StoreBackend)
	cfg.Store.BadgerPath = cmd.BadgerPath

	stack, err := entrypoint.OpenStack(&cfg, true)
	if err != nil {
		return err
	}
	defer stack.Close()

	req := services.ImportRequest{
		Sheet:    sheet,
		Filename: filepath.Base(cmd.FilePath),
		Source:   services.SourceCLI,
		DryRun:   cmd.DryRun,
	}

	ctx := context.Background()
	if cmd.Kind == importers.ModeSales {
		result, err := stack.Inventory.ImportSales(ctx, services.SalesImportRequest{
			ImportRequest: req,
			Date:          cmd.Date,
			Mode:          entities.SalesMode(cmd.Mode),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.out, result.Message)
	} else {
		result, err := stack.Inventory.ImportCatalog(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.out, result.Message)
	}

	if cmd.DryRun {
		fmt.Fprintln(cmd.out, "Dry run complete. Use without -dry-run to import.")
	}
	return nil
}

func (cmd *ImportCommand) readSheet() (*importers.Sheet, error) {
	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cmd.FilePath, err)
	}
	defer file.Close()

	return importers.DecodeFile(cmd.FilePath, file, cmd.SheetName)
}

// printHeader shows which column each field was read from. Errors are left
// for the import itself to report.
func (cmd *ImportCommand) printHeader(sheet *importers.Sheet) {
	header, err := importers.DetectHeader(sheet.Rows, cmd.Kind)
	if err != nil {
		return
	}

	fields := make([]importers.Field, 0, len(header.Columns))
	for f := range header.Columns {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return header.Columns[fields[i]] < header.Columns[fields[j]] })

	fmt.Fprintf(cmd.out, "Header on row %d:\n", header.Row+1)
	row := sheet.Rows[header.Row]
	for _, f := range fields {
		col := header.Columns[f]
		fmt.Fprintf(cmd.out, "  %-28s <- column %d %q\n", f, col+1, row[col])
	}
}
