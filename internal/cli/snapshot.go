package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"vhfix/pkg/host"
	"vhfix/pkg/render"
	"vhfix/pkg/viewport"
)

// NewSnapshotCommand renders the published heights as a PNG.
func NewSnapshotCommand(ro *rootOptions) *cobra.Command {
	var events []string
	var output, reference string
	var tolerance int
	cmd := &cobra.Command{
		Use:   "snapshot [page.html|url]",
		Short: "Render the viewport and published heights to a PNG",
		Long: `snapshot draws the simulated viewport with markers at the resolved --svh
and --lvh heights. Without a page the orchestrator runs from Go; with one,
the page's scripts publish the variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.device(cmd)
			if err != nil {
				return err
			}
			steps, err := ParseSteps(events)
			if err != nil {
				return err
			}
			opts, err := cfg.ViewportOptions()
			if err != nil {
				return err
			}

			var h *host.Host
			if len(args) == 1 {
				sim, err := newSimulation(cmd.Context(), cfg, args[0], false)
				if err != nil {
					return err
				}
				defer sim.Close()
				h = sim.host
			} else {
				h = cfg.Host()
				stop := viewport.New(h).Init(opts)
				defer stop()
			}
			for _, st := range steps {
				st.Apply(h.Win())
			}

			frame, err := render.FrameFromHost(h, opts.VariableNames)
			if err != nil {
				return err
			}
			frame.Label = viewport.Classify(h.UserAgent(), opts.ForceInApp, opts.Apps).String()
			r := render.NewRenderer(frame)
			r.Render(frame)
			if reference != "" {
				d, err := r.CompareFile(reference, tolerance)
				if err != nil {
					return err
				}
				if !d.Match {
					return fmt.Errorf("snapshot differs from %s: %d of %d pixels (max channel difference %d)",
						reference, d.DifferentPixels, d.TotalPixels, d.MaxDifference)
				}
				log.Info("snapshot matches reference", "path", reference)
				return nil
			}
			if err := r.SavePNG(output); err != nil {
				return fmt.Errorf("saving %s: %w", output, err)
			}
			log.Info("snapshot written", "path", output, "svh", frame.SafeValue, "lvh", frame.LargeValue)
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "vhfix.png", "PNG file to write")
	cmd.Flags().StringVar(&reference, "compare", "", "Compare with a reference PNG instead of writing one")
	cmd.Flags().IntVar(&tolerance, "tolerance", 2, "Per-channel difference allowed by --compare")
	cmd.Flags().StringArrayVarP(&events, "event", "e", nil, "Host change to replay before rendering (repeatable)")
	return cmd
}
