package util

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// SetupInterruptHandler runs the cleanups in order on SIGINT/SIGTERM, drops
// unfinished temp files in outputDir and exits.
func SetupInterruptHandler(outputDir string, cleanups ...func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Fprintln(os.Stderr, "\nInterrupt received. Cleaning up...")

		for _, fn := range cleanups {
			fn()
		}

		if outputDir != "" {
			CleanupTempFiles(outputDir)
			RemoveIfEmpty(outputDir)
		}

		os.Exit(1)
	}()
}

// CleanupTempFiles removes leftovers of interrupted atomic writes.
func CleanupTempFiles(outputDir string) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), tempSuffix) {
			continue
		}

		full := filepath.Join(outputDir, e.Name())
		if err := os.Remove(full); err != nil {
			fmt.Fprintf(os.Stderr, "Error cleaning up %s: %v\n", full, err)
		}
	}
}

func RemoveIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		_ = os.Remove(dir)
	}
}
