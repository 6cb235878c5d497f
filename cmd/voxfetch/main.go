package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxfetch/voxfetch/internal/config"
	"github.com/voxfetch/voxfetch/internal/logger"
	"github.com/voxfetch/voxfetch/internal/manifest"
	"github.com/voxfetch/voxfetch/pkg/models"
	"github.com/voxfetch/voxfetch/pkg/webclient"
)

const usage = `usage:
  voxfetch models list                     show catalog models and local state
  voxfetch models available                list model files published upstream
  voxfetch models download <name> [path]   download a model (optionally into path)
  voxfetch models delete <name>            remove a downloaded model`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "voxfetch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	args := os.Args[1:]
	if len(args) < 2 || args[0] != "models" {
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("missing or unknown command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := models.Load(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("load model catalog: %w", err)
	}

	client, err := webclient.New(webclient.WithTimeout(cfg.HTTPTimeout))
	if err != nil {
		return fmt.Errorf("create http client: %w", err)
	}
	defer client.Close()

	switch args[1] {
	case "list":
		mgr, err := models.NewManager(cfg.ModelsDir, client, nil, catalog)
		if err != nil {
			return err
		}
		for _, mod := range catalog.All() {
			state := " "
			if mgr.IsDownloaded(mod) {
				state = "*"
			}
			fmt.Printf("%s %-18s %-20s %6d MB  %s\n", state, mod.ID, mod.Name, mod.Size>>20, mod.Filename)
		}
		return nil

	case "available":
		names, err := models.AvailableUpstream(ctx, client, "")
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil

	case "download":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, usage)
			return fmt.Errorf("download requires a model name")
		}
		name := args[2]
		dir := cfg.ModelsDir
		if len(args) > 3 {
			dir = args[3]
		}

		store, err := manifest.NewStore(cfg.ManifestType, cfg.ManifestPath)
		if err != nil {
			return fmt.Errorf("open manifest: %w", err)
		}
		defer store.Close()

		mgr, err := models.NewManager(dir, client, store, catalog)
		if err != nil {
			return err
		}

		log.Infow("downloading model", "model", name, "dir", mgr.Dir())
		path, err := mgr.Download(ctx, name, func(p models.Progress) {
			fmt.Fprintf(os.Stderr, "\r%s: %d / %d bytes", p.ModelID, p.Downloaded, p.Total)
		})
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Errorw("download failed", "model", name, "error", err)
			return err
		}
		log.Infow("model downloaded", "model", name, "path", path)
		fmt.Println(path)
		return nil

	case "delete":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, usage)
			return fmt.Errorf("delete requires a model name")
		}

		store, err := manifest.NewStore(cfg.ManifestType, cfg.ManifestPath)
		if err != nil {
			return fmt.Errorf("open manifest: %w", err)
		}
		defer store.Close()

		mgr, err := models.NewManager(cfg.ModelsDir, client, store, catalog)
		if err != nil {
			return err
		}
		if err := mgr.Delete(args[2]); err != nil {
			return err
		}
		log.Infow("model deleted", "model", args[2])
		return nil

	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown models subcommand %q", args[1])
	}
}
