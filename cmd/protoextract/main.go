package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/rxlab/protoextract/internal/config"
	"github.com/rxlab/protoextract/internal/protocol"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// output is the JSON document written for one run.
type output struct {
	RuleSetVersion string            `json:"ruleSetVersion"`
	Documents      []documentRecords `json:"documents"`
}

type documentRecords struct {
	File     string            `json:"file"`
	Kind     protocol.Kind     `json:"kind"`
	Records  []protocol.Record `json:"records"`
	Warnings []string          `json:"warnings,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// setupLogging configures logging based on the configured level
func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// collectInputs resolves the input path to a sorted list of PDF files
func collectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", path)
	}
	return files, nil
}

// processFile runs the pipeline over one PDF and reports per-file outcome
func processFile(svc *protocol.Service, path string, maxFileSize int64) documentRecords {
	doc := documentRecords{File: filepath.Base(path)}

	info, err := os.Stat(path)
	if err != nil {
		doc.Error = err.Error()
		return doc
	}
	if info.Size() > maxFileSize {
		doc.Error = fmt.Sprintf("file exceeds maximum size (%d > %d bytes)", info.Size(), maxFileSize)
		return doc
	}

	data, err := os.ReadFile(path)
	if err != nil {
		doc.Error = err.Error()
		return doc
	}

	result, err := svc.Process(data, protocol.Hints{FileName: doc.File})
	if err != nil {
		doc.Error = err.Error()
		return doc
	}

	doc.Kind = result.Kind
	doc.Records = result.Records
	doc.Warnings = result.Warnings
	return doc
}

// writeOutput encodes the run result as indented JSON
func writeOutput(out output, path string) error {
	data, err := sonic.ConfigDefault.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	opts := protocol.DefaultOptions()
	opts.MinGlyphHeight = cfg.MinGlyphHeight
	opts.ReviewThreshold = cfg.ReviewThreshold
	opts.RulesPath = cfg.RulesPath

	svc, err := protocol.NewService(opts, log.New(os.Stderr, "[Pipeline] ", log.LstdFlags))
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	files, err := collectInputs(cfg.InputPath)
	if err != nil {
		log.Fatalf("Failed to resolve input: %v", err)
	}

	out := output{RuleSetVersion: svc.RuleSetVersion()}
	failures := 0
	for _, file := range files {
		doc := processFile(svc, file, cfg.MaxFileSize)
		if doc.Error != "" {
			failures++
			log.Printf("Extraction failed for %s: %s", doc.File, doc.Error)
		} else if cfg.IsDebug() {
			log.Printf("Extracted %d records from %s (%s)", len(doc.Records), doc.File, doc.Kind)
		}
		out.Documents = append(out.Documents, doc)
	}

	if err := writeOutput(out, cfg.OutputPath); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	if failures == len(files) {
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("protoextract\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
