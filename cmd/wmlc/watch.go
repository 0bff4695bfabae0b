package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/battle-for-wesnoth/wmlc/internal/debug"
	"github.com/battle-for-wesnoth/wmlc/pkg/pathutil"
)

var watchCommand = &cli.Command{
	Name:      "watch",
	Usage:     "Watch a directory and re-run the preprocessor whenever a .cfg file changes",
	ArgsUsage: "<dir>",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "debounce",
			Usage: "Minimum quiet period after a change before re-running",
			Value: 200 * time.Millisecond,
		},
	},
	Action: watchAction,
}

// watchAction runs a debounced fsnotify loop: every change under root
// resets a single timer, and the preprocessor only re-runs once changes
// settle for the configured debounce period.
func watchAction(c *cli.Context) error {
	root := c.Args().First()
	if root == "" {
		return cli.Exit("watch requires a directory argument", 1)
	}

	ppCfg, err := preprocessConfigFrom(c)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	debounce := c.Duration("debounce")
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	runOnce := func() {
		out, err := runPreprocessPath(ppCfg, root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wmlc watch: %v\n", err)
			return
		}
		display := pathutil.ToRelative(root, ppCfg.root)
		debug.LogPreprocess("re-preprocessed %s (%d bytes)", display, len(out))
		fmt.Printf("--- %s (%s) ---\n%s\n", display, time.Now().Format(time.RFC3339), out)
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".cfg") {
				continue
			}
			pending = true
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "wmlc watch: %v\n", err)
		case <-timer.C:
			if pending {
				pending = false
				runOnce()
			}
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
