package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/markdown-cli/internal/store"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored catalog snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		snaps, err := st.ListSnapshots(ctx)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots. Run import first.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRODUCTS\tVERSION\tCREATED")
		for _, s := range snaps {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				s.ID, s.Name, s.ProductCount, shortVersion(s.Version), s.CreatedAt.Format("2006-01-02 15:04"))
		}
		return eris.Wrap(w.Flush(), "snapshots: flush table")
	},
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
}

func shortVersion(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	return v
}
