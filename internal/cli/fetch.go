package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thoughttree/pkg/integrations"
	"github.com/matzehuels/thoughttree/pkg/integrations/movesvc"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

type fetchOpts struct {
	board   string
	player  string
	mode    string
	beam    int
	depth   int
	url     string
	output  string
	noCache bool
	refresh bool
}

// fetchCommand asks the move-selection service for a move and saves the
// reasoning tree it returns.
func (c *CLI) fetchCommand() *cobra.Command {
	opts := fetchOpts{player: "X", mode: movesvc.ModeToT, output: "tree.json"}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Request a reasoning tree from the move-selection service",
		Long: `Request a reasoning tree from the move-selection service.

The board is nine cells in row-major order: X, O, or '.' for empty. Row
separators ('/', '|', ',') and spaces are ignored, so "X.O/.X./..O" and
"X.O.X...O" are the same board.

In tot mode the response carries the explored tree, which is written to
--output for 'render' or 'view'. In cot mode only the chosen move and its
reasoning are printed.

Responses are cached locally; use --refresh to ask again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.board, "board", "b", ".........", "board cells, row-major")
	cmd.Flags().StringVarP(&opts.player, "player", "p", opts.player, "player to move: X or O")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", opts.mode, "reasoning mode: tot or cot")
	cmd.Flags().IntVar(&opts.beam, "beam", 0, "beam width (tot, service default when unset)")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "search depth (tot, service default when unset)")
	cmd.Flags().StringVar(&opts.url, "url", "", "service base URL (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "where to write the tree")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached responses")
	_ = cmd.RegisterFlagCompletionFunc("mode", fixedChoices(movesvc.ModeToT, movesvc.ModeCoT))

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, cmd *cobra.Command, opts *fetchOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	board, err := movesvc.ParseBoard(opts.board)
	if err != nil {
		return err
	}
	req := movesvc.Request{Mode: opts.mode, Board: board, Player: opts.player}
	if cmd.Flags().Changed("beam") {
		req.Beam = &opts.beam
	}
	if cmd.Flags().Changed("depth") {
		req.Depth = &opts.depth
	}
	if err := req.Validate(); err != nil {
		return err
	}

	baseURL := opts.url
	if baseURL == "" {
		baseURL = cfg.Service.URL
	}
	store, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	client := movesvc.NewClient(store, baseURL, movesvc.DefaultTTL)
	client.Base().SetHTTPClient(integrations.NewHTTPClient(cfg.Service.Timeout.Duration))

	c.Logger.Debug("requesting move", "url", baseURL, "board", board.String(), "player", req.Player, "mode", req.Mode)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Asking %s for a move...", baseURL))
	spinner.Start()
	resp, err := client.Move(ctx, req, opts.refresh)
	if err != nil {
		spinner.StopWithError("Request failed")
		return err
	}
	spinner.Stop()

	printSuccess("Move %d", resp.Move)
	printKeyValue("Board", board.String())
	if resp.Reasoning != "" {
		printKeyValue("Reasoning", resp.Reasoning)
	}
	if resp.Tree == nil {
		return nil
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	st := tree.Measure(resp.Tree)
	printFile(opts.output)
	printKeyValue("Nodes", strconv.Itoa(st.Nodes))
	printKeyValue("Depth", strconv.Itoa(st.MaxDepth))
	printNewline()
	printNextStep("Explore", appName+" view "+opts.output)
	return nil
}
