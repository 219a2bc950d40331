// noema-scan is a diagnostic tool that runs both metadata scan tiers
// against the given GGUF files and prints the results, together with the
// memory headroom a host application would consult before loading.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/armin976/noema-scan/internal/config"
	"github.com/armin976/noema-scan/internal/gguf"
	"github.com/armin976/noema-scan/internal/logger"
	"github.com/armin976/noema-scan/internal/monitor"
	"github.com/armin976/noema-scan/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.FullString())
		return 0
	}
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: noema-scan [-config file] <model.gguf> [model2.gguf...]")
		return 1
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Close()

	printMemory(log)

	exitCode := 0
	for _, path := range flag.Args() {
		if err := scanOne(path, cfg, log); err != nil {
			exitCode = 1
		}
	}
	return exitCode
}

func printMemory(log *logger.Logger) {
	footprint, err := monitor.MemoryFootprint()
	if err != nil {
		log.Warnf("failed to read process footprint: %v", err)
	}
	available, err := monitor.AvailableMemory()
	if err != nil {
		log.Warnf("failed to read available memory: %v", err)
	}
	fmt.Printf("Memory: footprint %s, available %s\n", formatBytes(footprint), formatBytes(available))
}

func scanOne(path string, cfg *config.Config, log *logger.Logger) error {
	fmt.Printf("\n========== %s ==========\n", filepath.Base(path))

	header, err := gguf.ScanHeader(path)
	if err != nil {
		log.Errorf("header scan failed for %s: %v", path, err)
		fmt.Printf("Header: unreadable (%v)\n", err)
		return err
	}
	fmt.Printf("Header: version %d, %d tensors, %d metadata entries\n",
		header.Version, header.TensorCount, header.MetadataKVCount)

	layers, found, err := gguf.ScanIntLimits(path, gguf.LayerCountKey, cfg.Scan.Limits())
	switch {
	case err != nil:
		log.Warnf("simple scan failed for %s: %v", path, err)
		fmt.Println("Simple scan: failed")
	case found:
		fmt.Printf("Simple scan: %s = %d\n", gguf.LayerCountKey, layers)
	default:
		fmt.Printf("Simple scan: %s not present\n", gguf.LayerCountKey)
	}

	info, err := gguf.ScanModelInfo(path)
	if err != nil {
		log.Errorf("rich scan failed for %s: %v", path, err)
		fmt.Println("Rich scan: failed")
		return err
	}

	fmt.Println("Rich scan:")
	fmt.Printf("  Layers:        %s\n", formatCount(info.LayerCount))
	fmt.Printf("  Hidden size:   %s\n", formatCount(info.HiddenSize))
	fmt.Printf("  Feed forward:  %s\n", formatCount(info.FeedForwardSize))
	fmt.Printf("  Vocab size:    %s\n", formatCount(info.VocabSize))
	if info.IsMoE {
		fmt.Printf("  MoE:           yes (%d experts, %d used, %d MoE layers)\n",
			info.ExpertCount, info.ExpertUsedCount, info.MoELayerCount)
	} else {
		fmt.Println("  MoE:           no")
	}
	return nil
}

func formatCount(v int32) string {
	if v == 0 {
		return "(unknown)"
	}
	return fmt.Sprintf("%d", v)
}

func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
