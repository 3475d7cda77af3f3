package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taigrr/pathtrace/pkg/render"
)

func newRenderCmd(g *globalFlags) *cobra.Command {
	opts := render.DefaultOptions()
	var (
		output string
		force  bool
		cam    cameraFlags
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to a PNG file",
		Example: `  pathtrace render -o cover.png --samples 200
  pathtrace render --scene spheres.gltf -W 800 -H 450 --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(g.logLevel)
			if err != nil {
				return err
			}

			scene, err := loadScene(g.scene, g.seed)
			if err != nil {
				return err
			}
			logger.Info("scene loaded", "scene", scene.Name, "objects", scene.World.Len())

			opts.Seed = g.seed
			opts.Logger = logger
			r, err := render.NewRenderer(opts)
			if err != nil {
				return err
			}

			camera, err := render.NewCamera(cam.apply(cmd, scene, float64(opts.Width)/float64(opts.Height)))
			if err != nil {
				return err
			}

			fb, err := r.Render(cmd.Context(), scene.World, camera)
			if err != nil {
				return err
			}
			if err := fb.SavePNG(output, force); err != nil {
				return fmt.Errorf("save image: %w", err)
			}
			logger.Info("image written", "path", output)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.Width, "width", "W", opts.Width, "image width in pixels")
	f.IntVarP(&opts.Height, "height", "H", opts.Height, "image height in pixels")
	f.IntVarP(&opts.SamplesPerPixel, "samples", "s", opts.SamplesPerPixel, "samples per pixel")
	f.IntVarP(&opts.MaxDepth, "depth", "d", opts.MaxDepth, "maximum bounces per path")
	f.IntVarP(&opts.Workers, "workers", "j", opts.Workers, "parallel workers (0 = number of CPUs)")
	f.StringVarP(&output, "output", "o", "image.png", "output PNG path")
	f.BoolVarP(&force, "force", "f", false, "overwrite the output file if it exists")
	cam.register(cmd)

	return cmd
}
