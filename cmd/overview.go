package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brogergvhs/malview/internal/batch"
	"github.com/brogergvhs/malview/internal/config"
	"github.com/brogergvhs/malview/internal/overview"
	"github.com/brogergvhs/malview/internal/providers"
	"github.com/brogergvhs/malview/internal/render"
	"github.com/brogergvhs/malview/internal/selection"
	"github.com/brogergvhs/malview/internal/ui"
	"github.com/brogergvhs/malview/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagType         string
	flagIDs          string
	flagRange        string
	flagExcludeIDs   string
	flagExcludeRange string
	flagFiles        []string

	// output
	flagFormat  string
	flagOutput  string
	flagArchive string
	flagDryRun  bool

	// extraction
	flagEnglishTitles bool
	flagLocale        string

	// runtime
	flagWorkers    int
	flagRate       float64
	flagSkipBroken bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	overviewCmd := &cobra.Command{
		Use:   "overview [<type> <id>...] [<url>...]",
		Short: "Fetch overview pages and render them. Uses the defaults from the selected config, overwritten by CLI flags",
		Example: `  malview overview anime 1 5
  malview overview https://myanimelist.net/manga/2/Berserk
  malview overview --type manga --range 1-20 --output out --format markdown
  malview overview --file saved.html`,
		RunE: runOverview,
	}

	// selection
	overviewCmd.Flags().StringVar(&flagType, "type", string(overview.Anime), "content type for --ids/--range (anime|manga)")
	overviewCmd.Flags().StringVar(&flagIDs, "ids", "", "title ids (e.g. 1,5,30)")
	overviewCmd.Flags().StringVar(&flagRange, "range", "", "range of title ids (e.g. 1-20)")
	overviewCmd.Flags().StringVar(&flagExcludeIDs, "exclude-ids", "", "ids to leave out")
	overviewCmd.Flags().StringVar(&flagExcludeRange, "exclude-range", "", "range of ids to leave out")
	overviewCmd.Flags().StringArrayVar(&flagFiles, "file", nil, "parse a saved overview page instead of fetching (repeatable)")

	// output
	overviewCmd.Flags().StringVar(&flagFormat, "format", "", "output format (json|markdown|text)")
	overviewCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output folder, - for stdout")
	overviewCmd.Flags().StringVar(&flagArchive, "archive", "", "also pack the written files into this zip")
	overviewCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be fetched, don’t fetch")

	// extraction
	overviewCmd.Flags().BoolVar(&flagEnglishTitles, "english-titles", false, "prefer the English title")
	overviewCmd.Flags().StringVar(&flagLocale, "locale", "", "locale for labels, dates and durations (e.g. de)")

	// runtime
	overviewCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel page fetches")
	overviewCmd.Flags().Float64Var(&flagRate, "rate", 0, "max requests per second")
	overviewCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "skip titles that fail to fetch instead of failing the run")

	// headers/auth
	overviewCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	overviewCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	overviewCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(overviewCmd)
}

func runOverview(cmd *cobra.Command, args []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:  flagIgnoreConfig,
		Debug:         flagDebug,
		Output:        flagOutput,
		Format:        flagFormat,
		Workers:       flagWorkers,
		RateLimit:     flagRate,
		SkipBroken:    flagSkipBroken,
		EnglishTitles: flagEnglishTitles,
		Locale:        flagLocale,
		Cookie:        flagCookie,
		CookieFile:    flagCookieFile,
		UserAgent:     flagUserAgent,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	logSvc.Debugf("Config file: %s", usedPath)

	w, err := render.For(cfg.Format)
	if err != nil {
		return err
	}

	toStdout := cfg.Output == config.OutputStdout
	if flagArchive != "" && toStdout {
		return fmt.Errorf("--archive needs --output <dir>")
	}
	if !toStdout {
		if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
			return fmt.Errorf("cannot create output folder: %w", err)
		}
	}

	reg, err := newRegistry(cfg, logSvc, storedEnglishTitles(context.Background(), cfg, logSvc))
	if err != nil {
		return err
	}
	p, err := siteProvider(reg)
	if err != nil {
		return err
	}

	if len(flagFiles) > 0 {
		return renderFiles(cmd, p, w, cfg.Output)
	}

	refs, err := resolveRefs(reg, args)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("no titles selected (give <type> <id>..., URLs, --ids or --range)")
	}

	if flagDryRun {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dry-run: %d titles selected.\n\n", len(refs))
		for i, ref := range refs {
			fmt.Fprintf(out, "%3d) %s\n    %s\n", i+1, ref, ref.URL(cfg.Origin))
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var outDir string
	if !toStdout {
		outDir = cfg.Output
	}
	util.SetupInterruptHandler(outDir, cancel)

	runner := batch.New(p, cfg.Workers, cfg.RateLimit, cfg.SkipBroken, logSvc)
	start := time.Now()

	var handle *ui.ProgressHandle
	var pm *ui.MPBProgressManager
	if len(refs) > 1 && !toStdout {
		pm = ui.NewProgressManager(os.Stderr)
		handle = pm.Register(strings.ToUpper(p.Name()))
	}

	results, runErr := runner.Run(ctx, refs, handle)
	if pm != nil {
		pm.Close()
	}

	written, err := writeResults(cmd, w, batch.Records(results), cfg.Output)
	if err != nil {
		return err
	}

	if flagArchive != "" && len(written) > 0 {
		if err := util.CreateArchive(written, flagArchive); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		logSvc.Infof("Archive written: %s", flagArchive)
	}

	if !toStdout {
		stats := runner.Stats()
		out := cmd.ErrOrStderr()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Overview Summary:")
		fmt.Fprintf(out, "Titles:   %d\n", stats.Fetched.Load())
		fmt.Fprintf(out, "Failed:   %d\n", stats.Failed.Load())
		fmt.Fprintf(out, "Data:     %s\n", util.Human(stats.Bytes.Load()))
		fmt.Fprintf(out, "Time:     %s\n", time.Since(start).Round(time.Second))
	}

	return runErr
}

// resolveRefs turns positional args and the id flags into refs. A leading
// content type takes the following numeric args as ids; any other arg must
// be an overview URL.
func resolveRefs(reg *providers.Registry, args []string) ([]overview.Ref, error) {
	contentType := flagType
	var refs []overview.Ref
	var positional []int

	if len(args) > 0 {
		if t, err := overview.ParseContentType(args[0]); err == nil {
			contentType = string(t)
			args = args[1:]
		}
	}

	for _, arg := range args {
		if id, err := strconv.Atoi(arg); err == nil {
			positional = append(positional, id)
			continue
		}

		_, ref, err := reg.ForURL(arg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	ids, err := selection.IDs(flagRange, flagIDs)
	if err != nil {
		return nil, err
	}
	ids = append(positional, ids...)

	ids, err = selection.Exclude(ids, flagExcludeRange, flagExcludeIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		ref, err := overview.NewRef(contentType, id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return dedupeRefs(refs), nil
}

func dedupeRefs(refs []overview.Ref) []overview.Ref {
	seen := make(map[overview.Ref]bool, len(refs))
	out := refs[:0]
	for _, r := range refs {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// renderFiles parses saved pages without touching the network. Output files
// are named after the input files.
func renderFiles(cmd *cobra.Command, p providers.Provider, w render.Writer, output string) error {
	for _, path := range flagFiles {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rec := p.Parse(string(b))
		ref := overview.Ref{Type: overview.ContentType(flagType)}

		if output == config.OutputStdout {
			if err := w.Write(cmd.OutOrStdout(), ref, rec); err != nil {
				return err
			}
			continue
		}

		var buf bytes.Buffer
		if err := w.Write(&buf, ref, rec); err != nil {
			return err
		}

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		dst := filepath.Join(output, base+"."+w.Ext())
		if err := util.WriteFileAtomic(dst, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Wrote", dst)
	}

	return nil
}

// writeResults renders records to stdout or one file each below output and
// returns the written paths.
func writeResults(cmd *cobra.Command, w render.Writer, results []batch.Result, output string) ([]string, error) {
	if output == config.OutputStdout {
		for _, res := range results {
			if err := w.Write(cmd.OutOrStdout(), res.Ref, res.Record); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	written := make([]string, 0, len(results))
	for _, res := range results {
		var buf bytes.Buffer
		if err := w.Write(&buf, res.Ref, res.Record); err != nil {
			return written, err
		}

		dst := filepath.Join(output, render.FileName(res.Ref, res.Record, w))
		if err := util.WriteFileAtomic(dst, buf.Bytes(), 0o644); err != nil {
			return written, err
		}
		written = append(written, dst)
	}

	return written, nil
}
