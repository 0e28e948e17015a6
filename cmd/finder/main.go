package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"image-duplicate-finder/internal/blockhash"
	"image-duplicate-finder/internal/config"
	"image-duplicate-finder/internal/db"
	"image-duplicate-finder/internal/reporter"
	"image-duplicate-finder/internal/scanner"
	"image-duplicate-finder/internal/similarity"
	"image-duplicate-finder/internal/visual"
	"image-duplicate-finder/internal/web"
)

const version = "1.0.0"

type Config struct {
	Directory   string
	Recursive   bool
	Algorithm   string
	Bits        int
	MaxDistance int
	Threshold   int
	Mode        string
	Workers     int
	OutputFile  string
	PDFFile     string
	TrashPath   string
	LeaveRef    bool
	Web         bool
	Port        int
	Verbose     bool
	Debug       bool
	Version     bool
}

func main() {
	cfg := parseFlags()

	log.SetFlags(log.Ldate | log.Ltime)

	if cfg.Version {
		fmt.Printf("image-duplicate-finder v%s\n", version)
		return
	}

	size, ok := digestSize(cfg.Bits)
	if !ok {
		log.Fatalf("❌ Unsupported digest size %d (use 16, 64, 144 or 256)", cfg.Bits)
	}
	algo := visual.Algorithm(cfg.Algorithm)
	if !algo.Valid() {
		log.Fatalf("❌ Unknown algorithm %q (use blockhash, phash or dhash)", cfg.Algorithm)
	}
	switch cfg.Mode {
	case "all", "visual", "name":
	default:
		log.Fatalf("❌ Unknown mode %q (use all, visual or name)", cfg.Mode)
	}

	if _, err := os.Stat(cfg.Directory); os.IsNotExist(err) {
		log.Fatalf("❌ Directory does not exist: %s", cfg.Directory)
	}

	log.Printf("🔍 Image Duplicate Finder")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	log.Printf("📂 Scanning directory: %s", cfg.Directory)
	log.Printf("🔑 Fingerprint: %s (%d bits), max distance %d", algo, algo.Bits(size), cfg.MaxDistance)
	log.Printf("🔧 Mode: %s", cfg.Mode)
	if cfg.Debug {
		log.Printf("🐛 DEBUG MODE: Enabled (Detailed Tracing)")
	}
	fmt.Printf("\n")

	startTime := time.Now()

	// Step 1: Scan for image files
	log.Println("📦 Step 1: Scanning for image files...")
	files, err := scanner.ScanDirectory(cfg.Directory, cfg.Recursive)
	if err != nil {
		log.Fatalf("❌ Failed to scan directory: %v", err)
	}

	log.Printf("✅ Found %d image files", len(files))
	scanner.PrintFileStats(files)
	fmt.Println()

	finalReport := &reporter.Report{
		TotalFiles: len(files),
		Algorithm:  string(algo),
		Bits:       algo.Bits(size),
		Timestamp:  time.Now().Format("2006-01-02 15:04:05"),
		Status:     "analyzing",
	}

	cache, err := db.NewCache("")
	if err != nil {
		log.Printf("⚠️  Could not initialize cache: %v", err)
	} else {
		defer cache.Close()
	}

	opts := visual.Options{
		Algorithm:   algo,
		Size:        size,
		MaxDistance: cfg.MaxDistance,
		Workers:     cfg.Workers,
		Debug:       cfg.Debug,
	}

	// Step 2: Visual fingerprints + clustering
	runVisual := func() {
		log.Println("🎨 Step 2: Computing visual fingerprints...")
		stepStart := time.Now()
		finalReport.Status = "analyzing_visual"
		finalReport.Progress = 0

		var fingerprint string
		if cache != nil {
			fingerprint = cache.CalculateFingerprint(files)
			if groups, ok := cache.GetReport(fingerprint); ok {
				log.Printf("⚡ Using cached analysis for this file set (%d groups)", len(groups))
				finalReport.VisualGroups = groups
				finalReport.VisualCount = len(groups)
				finalReport.Status = "finished"
				printGroups(groups, cfg.Verbose)
				return
			}
		}

		visual.ProcessDigests(files, cache, opts, func(p float64) {
			finalReport.Progress = p
			if !cfg.Web {
				fmt.Printf("\r⏳ Fingerprinting: [%-20s] %.1f%%", strings.Repeat("=", int(p/5)), p)
			}
		})
		if !cfg.Web {
			fmt.Println()
		}

		groups := visual.FindDuplicates(files, cache, opts)
		if cache != nil {
			cache.PutReport(fingerprint, groups)
		}
		finalReport.VisualGroups = groups
		finalReport.VisualCount = len(groups)
		finalReport.AnalysisDuration += time.Since(stepStart).Seconds()
		finalReport.Status = "finished"

		log.Printf("✅ Step 2 finished. Found %d visual duplicate groups.", len(groups))
		printGroups(groups, cfg.Verbose)
	}

	// Step 3: Similar filenames
	runNames := func() {
		log.Println("📝 Step 3: Similar name analysis...")
		stepStart := time.Now()

		pairs := similarity.FindSimilarNames(files, cfg.Threshold)

		var results []reporter.SimilarPair
		for _, p := range pairs {
			results = append(results, reporter.SimilarPair{
				File1:      fileInfo(p.File1),
				File2:      fileInfo(p.File2),
				Similarity: p.Similarity,
			})
		}
		finalReport.SimilarPairs = results
		finalReport.AnalysisDuration += time.Since(stepStart).Seconds()

		log.Printf("✅ Step 3 finished. Found %d similar name pairs.", len(results))
	}

	if cfg.Mode == "all" || cfg.Mode == "visual" {
		runVisual()
	}
	if cfg.Mode == "all" || cfg.Mode == "name" {
		runNames()
	}
	finalReport.Status = "finished"

	// Exports
	if cfg.OutputFile != "" {
		if err := reporter.ExportJSON(*finalReport, cfg.OutputFile); err != nil {
			log.Printf("⚠️  JSON export failed: %v", err)
		} else {
			log.Printf("📄 JSON report written to %s", cfg.OutputFile)
		}
	}
	if cfg.PDFFile != "" {
		if err := reporter.ExportPDF(*finalReport, cfg.PDFFile); err != nil {
			log.Printf("⚠️  PDF export failed: %v", err)
		} else {
			log.Printf("📄 PDF report written to %s", cfg.PDFFile)
		}
	}

	finalReport.AnalysisDuration = time.Since(startTime).Seconds()
	reporter.PrintSummary(*finalReport)

	// Web dashboard
	if cfg.Web {
		var allFileInfos []reporter.FileInfo
		for _, f := range files {
			allFileInfos = append(allFileInfos, fileInfo(f))
		}

		appConfig := &config.AppConfig{
			Directory:   cfg.Directory,
			TrashPath:   cfg.TrashPath,
			Algorithm:   cfg.Algorithm,
			Bits:        cfg.Bits,
			MaxDistance: cfg.MaxDistance,
			Threshold:   cfg.Threshold,
			Recursive:   cfg.Recursive,
			LeaveRef:    cfg.LeaveRef,
			Port:        cfg.Port,
		}

		srv := web.NewServer(cfg.Port, finalReport, cfg.TrashPath, cfg.LeaveRef, runVisual, runNames, allFileInfos, cfg.Directory, appConfig)
		srv.SetDebug(cfg.Debug)
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("❌ Web server error: %v", err)
			}
		}()

		go func() {
			time.Sleep(1 * time.Second) // Give server a moment to bind
			url := fmt.Sprintf("http://localhost:%d", cfg.Port)
			log.Printf("🌍 Opening dashboard at %s ...", url)
			web.OpenBrowser(url)
		}()

		log.Println("📡 Dashboard is ACTIVE. Press Ctrl+C to shutdown.")
		select {}
	}
}

func printGroups(groups []reporter.SimilarityGroup, verbose bool) {
	for i, g := range groups {
		if i >= 10 && !verbose {
			if i == 10 {
				fmt.Println("... (Use --verbose to see all groups)")
			}
			continue
		}
		fmt.Printf("🔍 %s (%d files, max distance %d)\n", g.BaseName, len(g.Files), g.MaxDistance)
		for _, f := range g.Files {
			fmt.Printf("  • %s (%s)\n", f.Name, scanner.FormatBytes(f.Size))
		}
		fmt.Println()
	}
}

func fileInfo(f scanner.ImageFile) reporter.FileInfo {
	return reporter.FileInfo{
		Name:    f.Name,
		Path:    f.Path,
		Size:    f.Size,
		Type:    f.Type,
		ModTime: f.ModTime.Format(time.RFC3339),
	}
}

func digestSize(bits int) (blockhash.Size, bool) {
	s := blockhash.Size(bits)
	return s, s.Valid()
}

func parseFlags() Config {
	cfg := Config{}

	// Saved dashboard settings act as defaults; flags override them.
	saved, _ := config.LoadConfig()

	flag.StringVar(&cfg.Directory, "dir", saved.Directory, "Directory to scan for image files")
	flag.BoolVar(&cfg.Recursive, "recursive", saved.Recursive, "Scan subdirectories")
	flag.StringVar(&cfg.Algorithm, "algo", saved.Algorithm, "Fingerprint algorithm: 'blockhash', 'phash' or 'dhash'")
	flag.IntVar(&cfg.Bits, "bits", saved.Bits, "Blockhash digest size in bits: 16, 64, 144 or 256")
	flag.IntVar(&cfg.MaxDistance, "distance", saved.MaxDistance, "Maximum Hamming distance for visual duplicates")
	flag.IntVar(&cfg.Threshold, "threshold", saved.Threshold, "Name similarity threshold percentage (0-100)")
	flag.StringVar(&cfg.Mode, "mode", "all", "Analysis mode: 'all', 'visual' or 'name'")
	flag.IntVar(&cfg.Workers, "workers", 4, "Parallel fingerprint workers")
	flag.StringVar(&cfg.OutputFile, "json", "", "Export report to JSON file")
	flag.StringVar(&cfg.PDFFile, "pdf", "", "Export report to PDF file")
	flag.StringVar(&cfg.TrashPath, "trash", saved.TrashPath, "Folder to move duplicates to (dashboard)")
	flag.BoolVar(&cfg.LeaveRef, "leave-ref", saved.LeaveRef, "Leave a .txt marker where a file was moved from")
	flag.BoolVar(&cfg.Web, "web", false, "Start web dashboard")
	flag.IntVar(&cfg.Port, "port", saved.Port, "Web server port")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Show all duplicate groups")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable detailed debug logging")
	flag.BoolVar(&cfg.Version, "version", false, "Show version and exit")

	flag.Parse()
	return cfg
}
