package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"vhfix/pkg/browser"
	"vhfix/pkg/viewport"
)

// settle is how long to wait for page events to reach Go after a resize.
const settle = 300 * time.Millisecond

// NewBrowseCommand runs the orchestrator from Go against a real Chromium
// page.
func NewBrowseCommand(ro *rootOptions) *cobra.Command {
	var resizes []string
	var screenshot string
	var headed, install bool
	cmd := &cobra.Command{
		Use:   "browse <url>",
		Short: "Publish the variables on a live page in Chromium",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.device(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.ViewportOptions()
			if err != nil {
				return err
			}
			steps, err := ParseSteps(resizes)
			if err != nil {
				return err
			}
			for _, st := range steps {
				if st.Kind != "resize" {
					return fmt.Errorf("browse only replays resize steps, got %s", st)
				}
			}

			bh, err := browser.Launch(browser.Options{
				UserAgent: cfg.UserAgent,
				Width:     int(cfg.Width),
				Height:    int(cfg.InnerHeight),
				Headless:  !headed,
				Install:   install,
			})
			if err != nil {
				return err
			}
			defer bh.Close()
			if err := bh.Goto(args[0]); err != nil {
				return err
			}

			stop := viewport.New(bh).Init(opts)
			defer stop()

			names := opts.VariableNames.Resolved()
			out := cmd.OutOrStdout()
			if err := printLive(out, "load", bh, names); err != nil {
				return err
			}
			for _, st := range steps {
				if err := bh.SetViewportSize(int(st.Width), int(st.Inner)); err != nil {
					return fmt.Errorf("resizing: %w", err)
				}
				time.Sleep(settle)
				if err := printLive(out, st.String(), bh, names); err != nil {
					return err
				}
			}

			if screenshot != "" {
				if err := bh.Screenshot(screenshot); err != nil {
					return fmt.Errorf("screenshot: %w", err)
				}
				log.Info("screenshot written", "path", screenshot)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&resizes, "event", "e", nil, "resize=W:H step to apply to the page (repeatable)")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "Write a PNG of the page")
	cmd.Flags().BoolVar(&headed, "headed", false, "Show the browser window")
	cmd.Flags().BoolVar(&install, "install", false, "Install the Chromium driver first")
	return cmd
}

func printLive(w io.Writer, label string, bh *browser.Host, names viewport.VariableNames) error {
	safe, err := bh.Property(names.Safe)
	if err != nil {
		return err
	}
	large, err := bh.Property(names.Large)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%-20s %s: %s; %s: %s;\n", label, names.Safe, safe, names.Large, large)
	return nil
}
