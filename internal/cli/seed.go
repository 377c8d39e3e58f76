package cli

import (
	"voxarena/db"
	"voxarena/utils"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create indexes and upsert preset templates, built-in modes and the default taxonomy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		if err := db.EnsureIndexes(ctx, e.database); err != nil {
			return err
		}
		if err := utils.SeedDefaults(ctx,
			db.NewTemplateRepository(e.database),
			db.NewModeRepository(e.database),
			db.NewTaxonomyRepository(e.database),
			e.log,
		); err != nil {
			return err
		}
		printf(cmd, "Seeded %d templates, %d modes and %d taxonomy categories\n",
			len(utils.PresetTemplates()), len(utils.DefaultModes()), len(utils.DefaultTaxonomy()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
