package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/veridoc/internal/logger"
)

// watchSettleDelay is how long a file must be quiet before ingestion,
// so partially written files are not picked up.
const watchSettleDelay = 500 * time.Millisecond

// watchExtensions are the file extensions the watcher ingests.
var watchExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest new documents",
	Long: `Watch a directory and automatically ingest documents as they appear.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireQAService(); err != nil {
		return err
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	return watchLoop(cmd.Context(), cmd, watcher)
}

// watchLoop ingests files after their write events settle. A timer per
// path restarts on every event so a file is only ingested once writes
// stop.
func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher) error {
	timers := make(map[string]*time.Timer)
	ingested := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-ingested:
			delete(timers, path)
			ingestWatchedFile(ctx, cmd, path)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !watchExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}

			path := event.Name
			if timer, exists := timers[path]; exists {
				timer.Reset(watchSettleDelay)
				continue
			}
			timers[path] = time.AfterFunc(watchSettleDelay, func() {
				select {
				case ingested <- path:
				case <-ctx.Done():
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// ingestWatchedFile ingests a single file, logging failures instead of
// stopping the watch.
func ingestWatchedFile(ctx context.Context, cmd *cobra.Command, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Reading %s: %v", path, err)
		return
	}
	if len(data) == 0 {
		return
	}

	doc, err := qaService.Ingest(ctx, data, filepath.Base(path))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		cmd.Printf("Failed to ingest %s: %v\n", path, err)
		return
	}

	cmd.Printf("Indexed %q as %s (%d pages)\n", doc.Title, doc.ID, doc.Pages)
}
