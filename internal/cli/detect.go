package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vhfix/pkg/viewport"
)

type detectResult struct {
	UserAgent string `json:"userAgent"`
	InApp     bool   `json:"inApp"`
	Reason    string `json:"reason"`
	IOS       bool   `json:"ios"`
}

// NewDetectCommand classifies a user agent.
func NewDetectCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [user-agent]",
		Short: "Report whether a user agent is an in-app browser and why",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.device(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.ViewportOptions()
			if err != nil {
				return err
			}
			ua := cfg.UserAgent
			if len(args) == 1 {
				ua = args[0]
			}
			reason := viewport.Classify(ua, opts.ForceInApp, opts.Apps)
			res := detectResult{
				UserAgent: ua,
				InApp:     reason != viewport.ReasonNone,
				Reason:    reason.String(),
				IOS:       viewport.IsIOS(ua),
			}
			return ro.emit(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "in-app: %t (%s)\n", res.InApp, res.Reason)
				fmt.Fprintf(w, "ios:    %t\n", res.IOS)
			})
		},
	}
}
