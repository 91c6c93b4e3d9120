package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vhfix/internal/config"
	"vhfix/pkg/host"
	"vhfix/pkg/viewport"
)

type computeResult struct {
	UserAgent    string            `json:"userAgent"`
	InnerHeight  float64           `json:"innerHeight"`
	VisualHeight float64           `json:"visualHeight"`
	Safe         float64           `json:"svh"`
	Large        float64           `json:"lvh"`
	Branch       string            `json:"branch"`
	Variables    map[string]string `json:"variables"`
	SafeName     string            `json:"svhName"`
	LargeName    string            `json:"lvhName"`
}

// NewComputeCommand prints the heights for the configured device and the
// values Init publishes for it.
func NewComputeCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compute",
		Short: "Compute safe and large heights for the simulated device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.device(cmd)
			if err != nil {
				return err
			}
			res, err := compute(cfg)
			if err != nil {
				return err
			}
			return ro.emit(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "inner:  %gpx  visual: %gpx\n", res.InnerHeight, res.VisualHeight)
				fmt.Fprintf(w, "svh:    %gpx\nlvh:    %gpx\n", res.Safe, res.Large)
				fmt.Fprintf(w, "branch: %s\n", res.Branch)
				fmt.Fprintf(w, "%s: %s;\n%s: %s;\n",
					res.SafeName, res.Variables[res.SafeName], res.LargeName, res.Variables[res.LargeName])
			})
		},
	}
}

func compute(cfg *config.Config) (computeResult, error) {
	opts, err := cfg.ViewportOptions()
	if err != nil {
		return computeResult{}, err
	}
	h := cfg.Host()
	b := viewport.New(h)
	heights := b.ComputeHeights(h.UserAgent(), opts.CapOnIOS())

	stop := b.Init(opts)
	defer stop()

	names := opts.VariableNames.Resolved()
	branch := "native"
	if viewport.IsInApp(h.UserAgent(), opts.ForceInApp, opts.Apps) {
		branch = "compensated"
	}
	return computeResult{
		UserAgent:    h.UserAgent(),
		InnerHeight:  h.Win().InnerHeight(),
		VisualHeight: h.Win().Visual().Height(),
		Safe:         heights.Safe,
		Large:        heights.Large,
		Branch:       branch,
		Variables:    rootVars(h.Root()),
		SafeName:     names.Safe,
		LargeName:    names.Large,
	}, nil
}

// rootVars returns the custom properties set on the root element.
func rootVars(root *host.Element) map[string]string {
	vars := make(map[string]string)
	for _, d := range root.CustomProperties() {
		vars[d.Name] = d.Value
	}
	return vars
}
