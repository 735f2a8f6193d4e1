package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varlint/internal/cli/output"
	"github.com/leapstack-labs/varlint/pkg/project"
)

// VariantJSON is the JSON form of a variant.
type VariantJSON struct {
	Name        string `json:"name"`
	BuildType   string `json:"build_type"`
	Release     bool   `json:"release"`
	Linted      bool   `json:"linted"`
	Task        string `json:"task"`
	Description string `json:"description"`
}

// NewVariantsCommand creates the variants command.
func NewVariantsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the variants of the project",
		Long: `List the variants declared in varlint.yaml with the lint command for
each. Projects without variants are linted as one configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			cfg := cmdCtx.Cfg
			r := cmdCtx.Renderer

			builder := project.NewModelBuilder(cfg.Project)
			if builder == nil {
				if r.EffectiveMode() == output.ModeJSON {
					return r.JSON([]VariantJSON{})
				}
				r.Println("Project " + cfg.Project.Name + " has no variants; 'varlint lint' checks it as one configuration.")
				return nil
			}
			model, err := builder.BuildModel()
			if err != nil {
				return err
			}

			linted := make(map[string]bool, len(cfg.Project.Variants))
			for _, vc := range cfg.Project.Variants {
				linted[vc.Name] = vc.IsLinted()
			}

			rows := make([]VariantJSON, 0, len(model.Variants)+1)
			for _, v := range model.Variants {
				rows = append(rows, VariantJSON{
					Name:        v.Name,
					BuildType:   v.BuildType,
					Release:     v.Release,
					Linted:      linted[v.Name],
					Task:        "varlint lint " + v.Name,
					Description: v.Description(),
				})
			}

			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(rows)
			}

			table := make([][]string, 0, len(rows)+1)
			for _, v := range rows {
				table = append(table, []string{
					v.Name, v.BuildType, strconv.FormatBool(v.Release), strconv.FormatBool(v.Linted), v.Task, v.Description,
				})
			}
			all := project.Variant{}
			table = append(table, []string{"", "", "", "", "varlint lint", all.Description()})

			r.Header(1, "Variants of "+model.Name)
			r.Table([]string{"Variant", "Build type", "Release", "Linted", "Command", "Description"}, table)
			return nil
		},
	}
}
