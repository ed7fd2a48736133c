package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/pixelfmt/pngraw/internal/config"
	"github.com/pixelfmt/pngraw/internal/logging"
	"github.com/pixelfmt/pngraw/internal/png"
	"github.com/pixelfmt/pngraw/internal/raster"
)

// findPNGFiles finds all .png files under a directory
func findPNGFiles(dir string, recursive bool) ([]string, error) {
	var pngFiles []string

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(strings.ToLower(path), ".png") {
				pngFiles = append(pngFiles, path)
			}
			return nil
		})
		return pngFiles, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".png") {
			pngFiles = append(pngFiles, filepath.Join(dir, entry.Name()))
		}
	}
	return pngFiles, nil
}

func main() {
	in := flag.String("in", "", "input .png file or directory (uses png_path from config.yaml if blank)")
	outDir := flag.String("out-dir", "", "output directory for converted files")
	format := flag.String("format", "", "output format: ppm or bmp (default ppm)")
	logLevel := flag.String("log-level", "info", "logging level: debug, info, warn, error")
	logFile := flag.String("log-file", "", "optional log file (rotated)")
	numWorkers := flag.Int("workers", 8, "number of parallel workers for converting files")
	flag.Parse()

	if err := logging.Init(*logLevel, *logFile); err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer logging.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// If no input specified, use png_path from config
	resolvedInput := *in
	if resolvedInput == "" {
		if cfg.PNGPath == "" {
			log.Fatal("png_path not configured in config.yaml and no input provided")
		}
		resolvedInput = cfg.PNGPath
	}

	resolvedOutDir := *outDir
	if resolvedOutDir == "" {
		resolvedOutDir = cfg.OutDir
	}
	resolvedFormat := *format
	if resolvedFormat == "" {
		resolvedFormat = cfg.Format
	}
	if resolvedFormat == "" {
		resolvedFormat = raster.FormatPPM
	}
	if resolvedFormat != raster.FormatPPM && resolvedFormat != raster.FormatBMP {
		log.Fatalf("unknown output format %q (want ppm or bmp)", resolvedFormat)
	}

	info, err := os.Stat(resolvedInput)
	if err != nil {
		log.Fatal(err)
	}

	var pngFiles []string
	if info.IsDir() {
		pngFiles, err = findPNGFiles(resolvedInput, true)
		if err != nil {
			log.Fatalf("failed to find .png files in directory: %v", err)
		}
		if len(pngFiles) == 0 {
			log.Fatalf("no .png files found in directory: %s", resolvedInput)
		}
	} else {
		pngFiles = []string{resolvedInput}
	}
	logging.Info("Found %d .png file(s)", len(pngFiles))

	if resolvedOutDir != "" {
		if err := os.MkdirAll(resolvedOutDir, 0755); err != nil {
			log.Fatalf("failed to create output directory %s: %v", resolvedOutDir, err)
		}
	}

	// Parallel worker pool
	jobs := make(chan string, *numWorkers)
	results := make(chan error, len(pngFiles))

	worker := func(id int) {
		for pngFile := range jobs {
			logging.Debug("Worker %d processing: %s", id, filepath.Base(pngFile))
			err := convertFile(pngFile, resolvedOutDir, resolvedFormat)
			if err != nil {
				logging.Error("failed to convert %s: %v", pngFile, err)
			}
			results <- err
		}
	}

	for w := 0; w < *numWorkers; w++ {
		go worker(w)
	}

	for _, pngFile := range pngFiles {
		jobs <- pngFile
	}
	close(jobs)

	failed := 0
	for i := 0; i < len(pngFiles); i++ {
		if <-results != nil {
			failed++
		}
	}

	green := color.New(color.FgGreen).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()
	fmt.Println(green("converted %d file(s)", len(pngFiles)-failed))
	if failed > 0 {
		fmt.Println(red("failed    %d file(s)", failed))
		os.Exit(1)
	}
}

// convertFile decodes a single .png file and writes it next to the input (or
// into outDir) in the requested format.
func convertFile(inputPath, outDir, format string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	img, err := png.Decode(data)
	if err != nil {
		if errors.Is(err, png.ErrMissingImageData) {
			return fmt.Errorf("%s has no image data: %w", inputPath, err)
		}
		return fmt.Errorf("failed to decode %s: %w", inputPath, err)
	}
	if !img.Complete() {
		logging.Warn("%s: pixel data ends early (%d of %d bytes), output padded",
			inputPath, len(img.Pix), img.Header.Stride()*int(img.Header.Height))
	}

	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outPath := baseName + "." + format
	if outDir != "" {
		outPath = filepath.Join(outDir, outPath)
	} else {
		outPath = filepath.Join(filepath.Dir(inputPath), outPath)
	}

	if err := raster.Save(img, outPath, format); err != nil {
		return fmt.Errorf("failed to save %s: %w", outPath, err)
	}
	logging.Info("wrote %s", outPath)
	return nil
}
