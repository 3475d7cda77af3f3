package main

import (
	"github.com/spf13/cobra"

	"github.com/taigrr/pathtrace/pkg/models"
)

func newExportCmd(g *globalFlags) *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the scene as a glTF file",
		Long: "Write the selected scene as glTF. The file can be edited in any glTF " +
			"tool and rendered again with --scene.",
		Example: `  pathtrace export -o cover.gltf --seed 7
  pathtrace export -o cover.glb`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, err := newLogger(g.logLevel)
			if err != nil {
				return err
			}

			scene, err := loadScene(g.scene, g.seed)
			if err != nil {
				return err
			}
			if err := models.SaveGLTF(output, scene, force); err != nil {
				return err
			}
			logger.Info("scene written", "path", output, "objects", scene.World.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "scene.gltf", "output path (.gltf or .glb)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite the output file if it exists")
	return cmd
}
