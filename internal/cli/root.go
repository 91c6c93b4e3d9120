// Package cli implements the vhfix cobra commands.
//
// Every command works on a simulated device described by --config, the
// environment and the device flags on the root command. Subcommands live in
// their own files.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"vhfix/internal/config"
)

// Set at build time via ldflags from the main package.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	jsonOutput bool
	verbose    bool
	configPath string
	envFile    string

	userAgent    string
	width        float64
	innerHeight  float64
	visualHeight float64
	force        bool
	noIOSCap     bool
	onFocus      bool
}

// NewRootCommand creates the root command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	ro := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "vhfix",
		Short: "Viewport height variables for in-app browsers",
		Long: `vhfix detects in-app browsers and WebViews from a user agent and publishes
safe (--svh) and large (--lvh) viewport heights as CSS custom properties.

Commands run against a simulated device, a page loaded into an embedded
JavaScript host, or a real Chromium page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if ro.verbose {
				log.SetLevel(log.DebugLevel)
			}
			config.LoadEnv(ro.envFile)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&ro.jsonOutput, "json", false, "Output in JSON format")
	pf.BoolVarP(&ro.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&ro.configPath, "config", "c", "", "Device and options YAML file")
	pf.StringVar(&ro.envFile, "env-file", ".env", "Env file with VHFIX_* overrides")
	pf.StringVar(&ro.userAgent, "ua", "", "User agent of the simulated device")
	pf.Float64Var(&ro.width, "width", 0, "Viewport width in CSS pixels")
	pf.Float64Var(&ro.innerHeight, "inner", 0, "window.innerHeight in CSS pixels")
	pf.Float64Var(&ro.visualHeight, "visual", 0, "visualViewport.height in CSS pixels")
	pf.BoolVar(&ro.force, "force", false, "Treat the device as an in-app browser")
	pf.BoolVar(&ro.noIOSCap, "no-ios-cap", false, "Use max instead of min on iOS")
	pf.BoolVar(&ro.onFocus, "on-focus", false, "Also update on focusin/focusout")

	rootCmd.AddCommand(NewDetectCommand(ro))
	rootCmd.AddCommand(NewComputeCommand(ro))
	rootCmd.AddCommand(NewRunCommand(ro))
	rootCmd.AddCommand(NewSnapshotCommand(ro))
	rootCmd.AddCommand(NewBrowseCommand(ro))
	return rootCmd
}

// Execute runs the root command and exits non-zero on error.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

// device loads the config and applies the flags that were set.
func (ro *rootOptions) device(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(ro.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("ua") {
		cfg.UserAgent = ro.userAgent
	}
	if flags.Changed("width") {
		cfg.Width = ro.width
	}
	if flags.Changed("inner") {
		cfg.InnerHeight = ro.innerHeight
	}
	if flags.Changed("visual") {
		cfg.VisualHeight = ro.visualHeight
	}
	for name, key := range map[string]string{"force": "forceInApp", "on-focus": "updateOnFocus"} {
		if flags.Changed(name) {
			v, _ := flags.GetBool(name)
			cfg.Options = setOption(cfg.Options, key, v)
		}
	}
	if flags.Changed("no-ios-cap") {
		cfg.Options = setOption(cfg.Options, "useMinOnIOS", !ro.noIOSCap)
	}
	return cfg, nil
}

func setOption(opts map[string]any, key string, v any) map[string]any {
	if opts == nil {
		opts = make(map[string]any)
	}
	opts[key] = v
	return opts
}

// emit writes v as indented JSON when --json is set, or calls text.
func (ro *rootOptions) emit(w io.Writer, v any, text func(io.Writer)) error {
	if !ro.jsonOutput {
		text(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
