package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgnsrekt/tabdedup/internal/apiclient"
	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/engine"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	refreshBefore = "before"
	refreshAfter  = "after"
)

type options struct {
	addr    string
	timeout time.Duration
	refresh string
	json    bool
}

func main() {
	_ = godotenv.Load()

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tabdedupctl [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  stats                      Show tab and duplicate counts\n")
		fmt.Fprintf(os.Stderr, "  scan                       List duplicate groups\n")
		fmt.Fprintf(os.Stderr, "  close                      Close all duplicates, keeping the newest tab\n")
		fmt.Fprintf(os.Stderr, "  tabs                       List open tabs\n")
		fmt.Fprintf(os.Stderr, "  settings                   Show settings\n")
		fmt.Fprintf(os.Stderr, "  settings set key=value...  Update settings (enabled, ignoreHash, ignoreSearch,\n")
		fmt.Fprintf(os.Stderr, "                             showNotification, excludedDomains=a.com,b.org)\n")
		fmt.Fprintf(os.Stderr, "  settings reset             Restore default settings\n")
		fmt.Fprintf(os.Stderr, "  toggle on|off              Enable or disable automatic deduplication\n")
		fmt.Fprintf(os.Stderr, "  health                     Check the daemon is reachable\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	var opts options
	pflag.StringVarP(&opts.addr, "addr", "a", getEnvOrDefault("DEDUP_CTL_ADDR", "127.0.0.1:8191"), "Daemon address")
	pflag.DurationVarP(&opts.timeout, "timeout", "t", 10*time.Second, "Request timeout")
	pflag.StringVar(&opts.refresh, "refresh", refreshBefore, "When close refreshes stats relative to reporting the count: before|after")
	pflag.BoolVarP(&opts.json, "json", "j", false, "Print raw JSON responses")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag || pflag.NArg() == 0 {
		pflag.Usage()
		if *helpFlag {
			return
		}
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	client := apiclient.New(opts.addr, opts.timeout)
	if err := run(ctx, client, opts, pflag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// daemon is the subset of the API client the commands use.
type daemon interface {
	Health(ctx context.Context) error
	Settings(ctx context.Context) (dedup.Settings, error)
	UpdateSettings(ctx context.Context, patch dedup.Patch) (engine.Ack, error)
	Stats(ctx context.Context) (dedup.Stats, error)
	Duplicates(ctx context.Context) ([]dedup.DuplicateGroup, error)
	CloseDuplicates(ctx context.Context) (dedup.CloseResult, error)
	Tabs(ctx context.Context) ([]dedup.TabRef, error)
}

func run(ctx context.Context, d daemon, opts options, args []string, w io.Writer) error {
	switch args[0] {
	case "health":
		if err := d.Health(ctx); err != nil {
			return err
		}
		fmt.Fprintln(w, "ok")
		return nil
	case "stats":
		stats, err := d.Stats(ctx)
		if err != nil {
			return err
		}
		return output(w, opts.json, stats, renderStats)
	case "scan":
		groups, err := d.Duplicates(ctx)
		if err != nil {
			return err
		}
		if err := output(w, opts.json, groups, renderGroups); err != nil {
			return err
		}
		if opts.json {
			return nil
		}
		stats, err := d.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, renderStats(stats))
		return nil
	case "close":
		return runClose(ctx, d, opts, w)
	case "tabs":
		tabs, err := d.Tabs(ctx)
		if err != nil {
			return err
		}
		return output(w, opts.json, tabs, renderTabs)
	case "settings":
		return runSettings(ctx, d, opts, args[1:], w)
	case "toggle":
		if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
			return errors.New("usage: toggle on|off")
		}
		enabled := args[1] == "on"
		if _, err := d.UpdateSettings(ctx, dedup.Patch{Enabled: &enabled}); err != nil {
			return err
		}
		fmt.Fprintln(w, renderEnabled(enabled))
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runClose(ctx context.Context, d daemon, opts options, w io.Writer) error {
	if opts.refresh != refreshBefore && opts.refresh != refreshAfter {
		return fmt.Errorf("invalid --refresh %q: want before or after", opts.refresh)
	}
	res, err := d.CloseDuplicates(ctx)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(w, res)
	}

	printStats := func() error {
		stats, err := d.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(w, renderStats(stats))
		return nil
	}

	if opts.refresh == refreshBefore {
		if err := printStats(); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, closeMessage(res.ClosedCount))
	if opts.refresh == refreshAfter {
		return printStats()
	}
	return nil
}

func runSettings(ctx context.Context, d daemon, opts options, args []string, w io.Writer) error {
	if len(args) == 0 {
		s, err := d.Settings(ctx)
		if err != nil {
			return err
		}
		return output(w, opts.json, s, renderSettings)
	}

	var patch dedup.Patch
	switch args[0] {
	case "set":
		p, err := parsePatch(args[1:])
		if err != nil {
			return err
		}
		patch = p
	case "reset":
		patch = dedup.PatchFrom(dedup.DefaultSettings())
	default:
		return fmt.Errorf("unknown settings command %q", args[0])
	}

	if _, err := d.UpdateSettings(ctx, patch); err != nil {
		return err
	}
	s, err := d.Settings(ctx)
	if err != nil {
		return err
	}
	if !opts.json {
		fmt.Fprintln(w, "Settings saved")
	}
	return output(w, opts.json, s, renderSettings)
}

// parsePatch builds a settings patch from key=value arguments.
func parsePatch(args []string) (dedup.Patch, error) {
	var p dedup.Patch
	if len(args) == 0 {
		return p, errors.New("usage: settings set key=value...")
	}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return p, fmt.Errorf("invalid setting %q: want key=value", arg)
		}
		if key == "excludedDomains" {
			domains := dedup.CleanDomains(strings.Split(value, ","))
			p.ExcludedDomains = &domains
			continue
		}

		b, err := strconv.ParseBool(value)
		if err != nil {
			return p, fmt.Errorf("invalid value for %s: %q", key, value)
		}
		switch key {
		case "enabled":
			p.Enabled = &b
		case "ignoreHash":
			p.IgnoreHash = &b
		case "ignoreSearch":
			p.IgnoreSearch = &b
		case "showNotification":
			p.ShowNotification = &b
		default:
			return p, fmt.Errorf("unknown setting %q", key)
		}
	}
	return p, nil
}

func output[T any](w io.Writer, asJSON bool, v T, render func(T) string) error {
	if asJSON {
		return writeJSON(w, v)
	}
	_, err := fmt.Fprint(w, render(v))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
