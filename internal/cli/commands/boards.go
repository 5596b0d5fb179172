package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/velocity/internal/cli/ui"
	"github.com/crimson-sun/velocity/internal/connector/trello"
)

func newBoardsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "print every board visible to the credentials",
		Long: `Prints the name of every board the configured credentials can read, one
per line. Use it to find the board_name setting; any unique prefix works.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st.initLogging()
			if err := requireTrello(st.cfg); err != nil {
				return err
			}
			boards, err := trello.Boards(cmd.Context(), trelloConfig(st.cfg))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, b := range boards {
				if b.Closed {
					fmt.Fprintln(w, b.Name, ui.Styles.Dim.Render("(closed)"))
					continue
				}
				fmt.Fprintln(w, b.Name)
			}
			return nil
		},
	}
}

func newListsCmd(st *state) *cobra.Command {
	var board string
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "print every list on the configured board",
		Long: `Prints the name of every list on the board, one per line. Lists named in
the finished or reject settings are marked. Use it to fill those settings
with exact names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st.initLogging()
			cfg := st.cfg
			if cmd.Flags().Changed("board") {
				cfg.Board.Name = board
			}
			if err := requireTrello(cfg); err != nil {
				return err
			}
			if cfg.Board.Name == "" {
				return fmt.Errorf("board_name is required")
			}
			connCfg := trelloConfig(cfg)
			b, err := trello.FindBoard(cmd.Context(), connCfg, cfg.Board.Name)
			if err != nil {
				return err
			}
			lists, err := trello.Lists(cmd.Context(), connCfg, b.ID)
			if err != nil {
				return err
			}
			finished, rejected := cfg.FinishedLists(), cfg.RejectedLists()
			w := cmd.OutOrStdout()
			for _, l := range lists {
				switch {
				case slices.Contains(finished, l.Name):
					fmt.Fprintln(w, l.Name, ui.Styles.Finished.Render("(finished)"))
				case slices.Contains(rejected, l.Name):
					fmt.Fprintln(w, l.Name, ui.Styles.Rejected.Render("(rejected)"))
				default:
					fmt.Fprintln(w, l.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&board, "board", "", "board name prefix")
	return cmd
}
