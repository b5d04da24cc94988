package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/brogergvhs/malview/internal/config"
	"github.com/brogergvhs/malview/internal/settings"
	"github.com/brogergvhs/malview/internal/ui"

	"github.com/spf13/cobra"
)

var (
	flagSettingsDebounce bool
	flagSettingsReveal   bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change the stored extension settings",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value of one option as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <json>",
	Short: "Set an option; the value is JSON, bare words are taken as strings",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print option changes as they happen until interrupted",
	RunE:  runSettingsWatch,
}

func init() {
	settingsCmd.Flags().BoolVar(&flagSettingsReveal, "reveal", false, "show token values unmasked")
	settingsSetCmd.Flags().BoolVar(&flagSettingsDebounce, "debounce", false, "coalesce with other writes to the same key before persisting")

	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsWatchCmd)
	rootCmd.AddCommand(settingsCmd)
}

func withSettings(fn func(ctx context.Context, store *settings.Store, log *ui.Logger) error) error {
	cfg, _, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openSettings(ctx, cfg, logSvc)
	if err != nil {
		return err
	}

	err = fn(ctx, store, logSvc)
	if cerr := store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	return withSettings(func(_ context.Context, store *settings.Store, _ *ui.Logger) error {
		all := store.All()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KEY\tVALUE")
		for _, name := range settings.Names() {
			v := all[name]
			if !flagSettingsReveal {
				v = settings.Mask(name, v)
			}
			b, _ := json.Marshal(v)
			_, _ = fmt.Fprintf(w, "%s\t%s\n", name, b)
		}
		return w.Flush()
	})
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	return withSettings(func(ctx context.Context, store *settings.Store, _ *ui.Logger) error {
		name := args[0]
		if _, ok := store.Get(name); !ok {
			return fmt.Errorf("%s is %w", name, settings.ErrUnknownOption)
		}

		v, err := store.Load(ctx, name)
		if err != nil {
			return err
		}

		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	return withSettings(func(ctx context.Context, store *settings.Store, log *ui.Logger) error {
		name := args[0]
		v := parseValue(args[1])

		if flagSettingsDebounce {
			if err := store.SetDebounced(name, v); err != nil {
				return err
			}
		} else if err := store.Set(ctx, name, v); err != nil {
			return err
		}

		log.Debugf("Set %s to %v", name, settings.Mask(name, v))
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, args[1])
		return nil
	})
}

func runSettingsWatch(cmd *cobra.Command, _ []string) error {
	return withSettings(func(ctx context.Context, store *settings.Store, log *ui.Logger) error {
		return watchSettings(ctx, store, cmd.OutOrStdout(), log)
	})
}

var errNoChangeFeed = errors.New("settings backend has no change feed, use the redis backend to watch")

// watchSettings prints every change as a JSON line until ctx is done.
func watchSettings(ctx context.Context, store *settings.Store, out io.Writer, log *ui.Logger) error {
	if !store.Watching() {
		return errNoChangeFeed
	}

	enc := json.NewEncoder(out)
	cancel := store.Subscribe(func(c settings.Change) {
		c.Value = settings.Mask(c.Key, c.Value)
		if err := enc.Encode(c); err != nil {
			log.Warnf("watch: %v", err)
		}
	})
	defer cancel()

	log.Infof("Watching settings, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

// parseValue reads raw as JSON and falls back to the plain string.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
