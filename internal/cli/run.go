package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"vhfix/internal/config"
	"vhfix/pkg/host"
	"vhfix/pkg/html"
	"vhfix/pkg/js"
	"vhfix/pkg/viewport"
	"vhfix/std/net"
)

// simulation is a page loaded into the in-memory host.
type simulation struct {
	host   *host.Host
	engine *js.Engine
	doc    *html.Document
	stop   viewport.Disposer
}

func (s *simulation) Close() {
	if s.stop != nil {
		s.stop()
	}
}

// loadPage reads a local file or fetches a URL, along with its external
// scripts, sending the device's user agent.
func loadPage(ctx context.Context, ref, userAgent string) (*html.Document, error) {
	fetcher := net.NewFetcher(userAgent)
	if net.IsNetworkURL(ref) {
		body, _, err := fetcher.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		return html.ParseWithFetcher(string(body), fetcher.Relative(ctx, ref))
	}

	content, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	baseDir := filepath.Dir(ref)
	return html.ParseWithFetcher(string(content), func(src string) (string, error) {
		if net.IsNetworkURL(src) {
			b, _, err := fetcher.Get(ctx, src)
			return string(b), err
		}
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		b, err := os.ReadFile(src)
		return string(b), err
	})
}

// newSimulation loads ref into a fresh host and runs its scripts. With
// initFromGo the orchestrator is started from Go before the scripts run.
func newSimulation(ctx context.Context, cfg *config.Config, ref string, initFromGo bool) (*simulation, error) {
	doc, err := loadPage(ctx, ref, cfg.UserAgent)
	if err != nil {
		return nil, err
	}
	sim := &simulation{host: cfg.Host(), doc: doc}
	vp, _ := doc.Meta("viewport")
	log.Debug("page loaded", "page", ref, "title", doc.Title, "viewport", vp)
	sim.host.Root().OnChange(func(name, value string) {
		log.Debug("style write", "property", name, "value", value)
	})
	if doc.RootStyle != "" {
		sim.host.Root().SetCSSText(doc.RootStyle)
	}
	if initFromGo {
		opts, err := cfg.ViewportOptions()
		if err != nil {
			return nil, err
		}
		sim.stop = viewport.New(sim.host).Init(opts)
	}
	sim.engine = js.New(sim.host, js.WithLogger(log.Default().WithPrefix("js")))
	log.Debug("running page scripts", "page", ref, "scripts", len(doc.Scripts))
	if err := sim.engine.Execute(doc.Scripts); err != nil {
		sim.Close()
		return nil, fmt.Errorf("running %s: %w", ref, err)
	}
	return sim, nil
}

type stepResult struct {
	Step         string            `json:"step"`
	InnerHeight  float64           `json:"innerHeight"`
	VisualHeight float64           `json:"visualHeight"`
	Variables    map[string]string `json:"variables"`
	CSSText      string            `json:"cssText"`
	// Listeners counts host listeners on the window and visual viewport.
	Listeners int `json:"listeners"`
	Writes    int `json:"writes"`
}

func observe(label string, h *host.Host) stepResult {
	return stepResult{
		Step:         label,
		InnerHeight:  h.Win().InnerHeight(),
		VisualHeight: h.Win().Visual().Height(),
		Variables:    rootVars(h.Root()),
		CSSText:      h.Root().CSSText(),
		Listeners:    h.Win().TotalListeners() + h.Win().Visual().TotalListeners(),
		Writes:       h.Root().Writes(),
	}
}

// NewRunCommand loads a page, runs its scripts and replays host events.
func NewRunCommand(ro *rootOptions) *cobra.Command {
	var events []string
	var initFromGo bool
	cmd := &cobra.Command{
		Use:   "run <page.html|url>",
		Short: "Run a page's scripts on the simulated device and replay events",
		Long: `run loads a page into an embedded JavaScript host that exposes window,
visualViewport, document.documentElement.style and the viewportHeight
library, runs its scripts, then replays --event steps and prints the root
custom properties after each one.

Steps: resize=W:H[:V]  visual=H  keyboard=H  focus  blur  rotate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.device(cmd)
			if err != nil {
				return err
			}
			steps, err := ParseSteps(events)
			if err != nil {
				return err
			}
			sim, err := newSimulation(cmd.Context(), cfg, args[0], initFromGo)
			if err != nil {
				return err
			}
			defer sim.Close()

			results := []stepResult{observe("load", sim.host)}
			for _, st := range steps {
				st.Apply(sim.host.Win())
				results = append(results, observe(st.String(), sim.host))
			}
			return ro.emit(cmd.OutOrStdout(), results, func(w io.Writer) {
				for _, r := range results {
					fmt.Fprintf(w, "%-20s inner=%-6g visual=%-6g %s\n",
						r.Step, r.InnerHeight, r.VisualHeight, r.CSSText)
				}
			})
		},
	}
	cmd.Flags().StringArrayVarP(&events, "event", "e", nil, "Host change to replay after load (repeatable)")
	cmd.Flags().BoolVar(&initFromGo, "init", false, "Start the orchestrator from Go before the page scripts")
	return cmd
}
