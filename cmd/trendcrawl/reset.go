package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trendcrawl/internal/store"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Empty the accumulation store without delivering a digest",
	Long: `Reset discards every accumulated post. The run counter survives unless
--state is given, so the heavy category keeps its schedule.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().Bool("state", false, "also reset the run counter")

	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	withState, _ := cmd.Flags().GetBool("state")

	st, err := store.Load(cfg.StorePath())
	if err != nil {
		// A corrupt store is exactly what reset is for.
		st = store.New()
	}
	n := st.Len()
	st.Reset()

	if withState {
		err = store.Commit(cfg.StorePath(), st, cfg.StatePath(), types.RunState{})
	} else {
		err = store.Save(cfg.StorePath(), st)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d posts\n", n)
	if withState {
		fmt.Println("Run counter reset; the next cycle includes the heavy category")
	}
	return nil
}
