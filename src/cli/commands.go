package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ogri-la/gear-journey-go/src/bis"
	"github.com/ogri-la/gear-journey-go/src/catalogue"
	"github.com/ogri-la/gear-journey-go/src/displayid"
	"github.com/ogri-la/gear-journey-go/src/progression"
	"github.com/ogri-la/gear-journey-go/src/retry"
	"github.com/ogri-la/gear-journey-go/src/server"
	"github.com/ogri-la/gear-journey-go/src/types"
	"github.com/ogri-la/gear-journey-go/src/validation"
)

// modelTimeout bounds how long plan waits for display ids
const modelTimeout = 30 * time.Second

// CommandHandler handles CLI commands
type CommandHandler struct {
	catalogue *catalogue.Service
	out       io.Writer
}

// NewCommandHandler creates a new command handler writing results to out
func NewCommandHandler(service *catalogue.Service, out io.Writer) *CommandHandler {
	return &CommandHandler{
		catalogue: service,
		out:       out,
	}
}

// Serve runs the HTTP server while the catalogue loads in the background.
// Failed loads are retried with backoff, the catalogue routes answer 503 until one succeeds.
func (h *CommandHandler) Serve(ctx context.Context, srv *server.Server, retryConfig retry.Config) error {
	slog.Info("starting serve command")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := h.catalogue.LoadUntilReady(gctx, retryConfig); err != nil {
			slog.Warn("stopped loading catalogue", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		return srv.Run(gctx)
	})

	return g.Wait()
}

// PlanOutput is the plan command's result
type PlanOutput struct {
	progression.Plan
	Models map[int]types.DisplayInfo `json:"models,omitempty"`
}

// Plan prints the progression of the given items at a level.
// A non-nil tracker also resolves model display ids for the viewer slots.
func (h *CommandHandler) Plan(ctx context.Context, config PlanConfig, tracker *displayid.Tracker) error {
	slog.Info("starting plan command", "items", len(config.ItemIDs), "level", config.Level)

	if err := h.catalogue.Load(ctx); err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	ids := bis.UniqueIDs(config.ItemIDs)
	items := h.catalogue.ItemsByIDs(ids)
	if len(items) < len(ids) {
		slog.Warn("some items aren't in the catalogue", "requested", len(config.ItemIDs), "found", len(items))
	}

	level := min(max(config.Level, bis.MinLevel), bis.MaxLevel)
	output := PlanOutput{Plan: progression.BuildPlan(items, level)}

	if tracker != nil && len(output.ViewerItemIDs) > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, modelTimeout)
		defer cancel()

		request := tracker.Update(waitCtx, output.ViewerItemIDs)
		if _, err := request.Wait(waitCtx); err != nil {
			slog.Warn("model lookup incomplete", "error", err)
		}
		output.Models = tracker.Snapshot()
	}

	return h.writeJSON(output, config.OutputFiles)
}

// Search prints catalogue items matching a query and filters
func (h *CommandHandler) Search(ctx context.Context, config SearchConfig) error {
	if err := h.catalogue.Load(ctx); err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	items := catalogue.SearchItems(h.catalogue.Filter(config.Filters), config.Query)
	slog.Debug("searched catalogue", "query", config.Query, "matches", len(items))

	if config.JSON {
		return h.writeJSON(items, nil)
	}
	return h.writeTable(items)
}

// List applies edits to the saved selection list and prints it with its share fragment.
// Edits run in order: replace from fragment, clear, remove, add.
func (h *CommandHandler) List(ctx context.Context, config ListConfig, store *bis.Store) error {
	if err := h.catalogue.Load(ctx); err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	if err := store.Init(ctx, h.catalogue, config.Fragment); err != nil {
		return err
	}

	if config.Clear {
		if err := store.Clear(ctx); err != nil {
			return err
		}
	}

	for _, id := range config.Remove {
		if err := store.Remove(ctx, id); err != nil {
			return err
		}
	}

	for _, id := range config.Add {
		item, ok := h.catalogue.ItemByID(id)
		if !ok {
			return fmt.Errorf("item %d isn't in the catalogue", id)
		}
		if err := store.Add(ctx, item); err != nil {
			return err
		}
	}

	if err := h.writeTable(store.Items()); err != nil {
		return err
	}

	summary := progression.Summarize(store.Items())
	fmt.Fprintf(h.out, "\n%d items, %d slots, %d%% coverage, levels %s\n",
		summary.Total, summary.Slots, summary.Coverage, summary.LevelRange())
	if fragment := store.ShareFragment(); fragment != "" {
		fmt.Fprintf(h.out, "share: %s\n", fragment)
	}
	return nil
}

// Validate checks an items.json file
func (h *CommandHandler) Validate(config ValidateConfig) error {
	slog.Info("validating items file", "file", config.File)
	if err := validation.ValidateItemsFile(config.File); err != nil {
		return fmt.Errorf("%s is invalid: %w", config.File, err)
	}
	fmt.Fprintf(h.out, "%s is valid\n", config.File)
	return nil
}

func (h *CommandHandler) writeTable(items []types.Item) error {
	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSLOT\tLEVEL\tQUALITY\tSOURCE")
	for _, item := range items {
		source := progression.FormatSource(item)
		if item.Source != nil && item.Source.DropChance != nil {
			source += " (" + progression.FormatDropChance(item.Source.DropChance) + ")"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			item.ItemID, item.Name, item.Slot, item.RequiredLevel, item.Quality, source)
	}
	return w.Flush()
}

// writeJSON writes data to the output files, or to out when there are none
func (h *CommandHandler) writeJSON(data any, outputFiles []string) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	if len(outputFiles) == 0 {
		fmt.Fprintln(h.out, string(jsonData))
		return nil
	}

	for _, outputFile := range outputFiles {
		if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output to %s: %w", outputFile, err)
		}
		slog.Info("wrote output", "file", outputFile)
	}

	return nil
}
