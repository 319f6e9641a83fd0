package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chargesim/backend/services/charging-sim/internal/catalog"
	"chargesim/backend/services/charging-sim/internal/config"
)

func newCatalogCmd(cfgPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate the station catalog and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				cfg, err := config.LoadFrom(*cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				path = cfg.Catalog.Path
			}

			store, err := catalog.Load(path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STATION\tNAME\tCONNECTORS")
			for _, st := range store.Stations() {
				name, _ := st.Attributes["name"].(string)
				fmt.Fprintf(w, "%s\t%s\t%d\n", st.ID, name, len(st.Connectors))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file to check instead of the configured one")
	return cmd
}
