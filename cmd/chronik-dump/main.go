// Command chronik-dump copies the journal between storage backends and edits
// the host's device preferences.
//
//	chronik-dump [-config f] [-driver d] [-path p] export [-o file]
//	chronik-dump [-config f] [-driver d] [-path p] import file
//	chronik-dump [-config f] prefs [-name n] [-pin p]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"chronik/internal/config"
	"chronik/internal/kv"
	"chronik/internal/logger"
	"chronik/internal/prefs"
	"chronik/internal/service"
	"chronik/internal/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "chronik-dump:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("chronik-dump", flag.ContinueOnError)
	configFile := fs.String("config", "", "config file path")
	driver := fs.String("driver", "", "override storage.driver")
	path := fs.String("path", "", "override storage.path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("missing command: export, import or prefs")
	}

	cfg := config.Load(*configFile)
	cfg.Log.Level = "warn"
	logFile := logger.Init(cfg.Log)
	defer logFile.Close()
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	if *path != "" {
		cfg.Storage.Path = *path
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "export":
		return export(cfg, rest, stdout)
	case "import":
		return importDump(cfg, rest, stdout)
	case "prefs":
		return editPrefs(cfg, rest, stdout)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// openJournal loads the configured backend. With strict set, any slot that
// exists but cannot be read fails the command instead of reading as empty.
func openJournal(cfg *config.Config, strict bool) (*service.Journal, func() error, error) {
	backend, err := kv.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(backend, store.Options{Namespace: cfg.Storage.Namespace, WriteTimeout: cfg.Storage.WriteTimeout})
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.LoadTimeout)
	defer cancel()
	if err := st.Load(ctx); err != nil && strict {
		backend.Close()
		return nil, nil, fmt.Errorf("load journal: %w", err)
	}

	closeAll := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return errors.Join(st.Close(ctx), backend.Close())
	}
	return service.NewJournal(st), closeAll, nil
}

func export(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	j, closeAll, err := openJournal(cfg, true)
	if err != nil {
		return err
	}
	defer closeAll()

	d, err := j.Export()
	if err != nil {
		return err
	}
	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func importDump(cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: import <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	var d service.Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("decode dump: %w", err)
	}
	counts, err := service.Inspect(d)
	if err != nil {
		return err
	}

	// slots outside the dump are never written, so unreadable ones stay as they are
	j, closeAll, err := openJournal(cfg, false)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.LoadTimeout)
	defer cancel()
	// the operator at the console is trusted with every slot
	if err := j.Import(ctx, service.NewSession("chronik-dump", true), d); err != nil {
		closeAll()
		return err
	}
	if err := closeAll(); err != nil {
		return err
	}
	for _, name := range store.SlotNames {
		if n, ok := counts[name]; ok {
			fmt.Fprintf(stdout, "%-12s %d\n", name, n)
		}
	}
	return nil
}

func editPrefs(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("prefs", flag.ContinueOnError)
	name := fs.String("name", "", "set the display name")
	pin := fs.String("pin", "", "set the game master PIN override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := prefs.Open(cfg.Prefs.File)
	if err != nil {
		return err
	}
	if *name != "" {
		if err := p.SetDisplayName(*name); err != nil {
			return err
		}
	}
	if *pin != "" {
		if err := p.SetPIN(*pin); err != nil {
			return err
		}
	}
	fmt.Fprintf(stdout, "display_name: %s\n", p.DisplayName())
	return nil
}
