package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/velocity/internal/cli/ui"
	"github.com/crimson-sun/velocity/internal/engine/rules"
	"github.com/crimson-sun/velocity/internal/output/stdout"
)

func newRulesCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "print the classification rules",
		Long: `Prints the pass rules, the classification rules in evaluation order, and
the action filter sent to the board service. The first matching rule
decides an action's category; actions matching none are ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := st.cfg
			w := cmd.OutOrStdout()

			rejected := cfg.RejectedLists()
			fmt.Fprintln(w, ui.Styles.Bold.Render("PASS"))
			if len(rejected) == 0 {
				fmt.Fprintln(w, "  every list")
			} else {
				fmt.Fprintf(w, "  lists other than %s\n", strings.Join(rejected, ", "))
			}
			fmt.Fprintln(w)

			rs := classificationRules(cfg)
			rows := make([][]string, 0, len(rs))
			for i, r := range rs {
				rows = append(rows, []string{strconv.Itoa(i + 1), r.String()})
			}
			fmt.Fprintln(w, ui.Styles.Bold.Render("CLASSIFY"))
			fmt.Fprintln(w, stdout.Render([]string{"#", "rule"}, rows))
			fmt.Fprintln(w)

			fmt.Fprintln(w, ui.Styles.Bold.Render("QUERY"))
			fmt.Fprintf(w, "  filter=%s\n", strings.Join(rules.QueryKinds(rs), ","))
			return nil
		},
	}
}
