package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"stockflow-importer/internal/statement"
	"stockflow-importer/internal/util"

	"go.uber.org/zap"
)

func main() {
	var (
		pdfPath = flag.String("pdf", "", "path to the bank statement PDF")
		outDir  = flag.String("out", "pdf_to_xlsx_files", "output directory for the workbook")
		prefix  = flag.String("prefix", "cargos_bbva", "output file name prefix")
	)
	flag.Parse()

	if *pdfPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := util.InitLogger(os.Getenv("ENV")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	text, err := statement.ExtractText(*pdfPath)
	if err != nil {
		logger.Fatal("Failed to extract statement text",
			zap.String("pdf", *pdfPath),
			zap.Error(err))
	}

	st := statement.Parse(text)
	logger.Info("Statement parsed",
		zap.Int("msi_charges", len(st.MSI)),
		zap.Int("regular_charges", len(st.Regular)))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	// Name the workbook after the newest charge on the statement.
	opDate, ok := st.LatestOperationDate()
	if !ok {
		opDate = time.Now()
	}
	outPath := filepath.Join(*outDir, fmt.Sprintf("%s_%s.xlsx", *prefix, opDate.Format("02Jan2006")))

	if err := statement.WriteWorkbook(st, outPath); err != nil {
		logger.Fatal("Failed to write workbook", zap.Error(err))
	}
	logger.Info("Workbook written", zap.String("file", outPath))
}
