package cli

import (
	"fmt"

	"voxarena/db"
	"voxarena/internal/format"
	"voxarena/services"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var driftCmd = &cobra.Command{
	Use:   "drift <debate-id>",
	Short: "Compare a debate's segments against its format template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := primitive.ObjectIDFromHex(args[0])
		if err != nil {
			return fmt.Errorf("invalid debate id %q", args[0])
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		svc := services.NewDebateService(
			db.NewDebateRepository(e.database),
			db.NewTemplateRepository(e.database),
			db.NewPersonaRepository(e.database),
			db.NewModeRepository(e.database),
			e.log,
		)
		report, err := svc.Drift(cmd.Context(), id)
		if err != nil {
			return err
		}
		printDrift(cmd, report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(driftCmd)
}

func printDrift(cmd *cobra.Command, r *format.DriftReport) {
	if !r.IsDrifted {
		printf(cmd, "Matches %q (%d segments)\n", r.TemplateName, r.TemplateSegments)
		return
	}
	printf(cmd, "Drifted from %q: %d%% of %d segments unchanged\n", r.TemplateName, r.DriftPercentage, r.TemplateSegments)
	for _, d := range r.Differences {
		printf(cmd, "  [%s] %s\n", d.Kind, d.Message)
	}
}
