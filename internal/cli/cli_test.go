package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vhfix/pkg/viewport"
)

const (
	uaDesktop    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36"
	uaIOSSafari  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 Version/17.2 Mobile/15E148 Safari/604.1"
	uaIOSWrapped = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"
	uaInstagram  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Instagram 312.0"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.Execute()
	return out.String(), err
}

func writePage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		inApp  bool
		reason string
	}{
		{"instagram", []string{uaInstagram}, true, "app"},
		{"desktop", []string{uaDesktop}, false, "none"},
		{"ios wrapper", []string{uaIOSWrapped}, true, "ios-wrapper"},
		{"forced", []string{uaDesktop, "--force"}, true, "forced"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"detect", "--json"}, tt.args...)...)
			require.NoError(t, err)
			var res detectResult
			require.NoError(t, json.Unmarshal([]byte(out), &res))
			assert.Equal(t, tt.inApp, res.InApp)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}

	out, err := execute(t, "detect", "--ua", uaIOSSafari)
	require.NoError(t, err)
	assert.Contains(t, out, "in-app: false (none)")
	assert.Contains(t, out, "ios:    true")
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		safe  string
		large string
	}{
		{"native", []string{"--ua", uaDesktop}, "100svh", "100lvh"},
		{"ios capped", []string{"--ua", uaIOSSafari, "--force"}, "800px", "780px"},
		{"ios uncapped", []string{"--ua", uaIOSSafari, "--force", "--no-ios-cap"}, "800px", "800px"},
		{"in-app", []string{"--ua", uaInstagram}, "800px", "780px"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"compute", "--json", "--inner", "800", "--visual", "780"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			var res computeResult
			require.NoError(t, json.Unmarshal([]byte(out), &res))
			assert.Equal(t, tt.safe, res.Variables[viewport.DefaultSafeName])
			assert.Equal(t, tt.large, res.Variables[viewport.DefaultLargeName])
		})
	}

	out, err := execute(t, "compute", "--ua", uaDesktop, "--inner", "640")
	require.NoError(t, err)
	assert.Contains(t, out, "branch: native")
	assert.Contains(t, out, "--svh: 100svh;")
}

func TestComputeCustomNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.yaml")
	require.NoError(t, os.WriteFile(path, []byte("options:\n  variableNames:\n    lvh: --tall\n"), 0o644))
	out, err := execute(t, "compute", "--config", path, "--ua", uaInstagram, "--inner", "700", "--visual", "700")
	require.NoError(t, err)
	assert.Contains(t, out, "--svh: 700px;")
	assert.Contains(t, out, "--tall: 700px;")

	out, err = execute(t, "compute", "--json", "--config", path, "--ua", uaInstagram, "--inner", "700", "--visual", "700")
	require.NoError(t, err)
	var res computeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "--svh", res.SafeName)
	assert.Equal(t, "--tall", res.LargeName)
	assert.Equal(t, "700px", res.Variables["--tall"])
}

func TestComputeInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("options:\n  updateOnFocus: 1\n"), 0o644))
	_, err := execute(t, "compute", "--config", path)
	assert.ErrorIs(t, err, viewport.ErrInvalidOptions)
}

func TestRunReplaysEvents(t *testing.T) {
	page := writePage(t, `<html style="color: black"><head>
<script>viewportHeight.initViewportHeight({ updateOnFocus: true });</script>
</head><body></body></html>`)

	out, err := execute(t, "run", page, "--json", "--ua", uaIOSWrapped, "--inner", "800",
		"-e", "resize=390:700:650", "-e", "keyboard=300", "-e", "blur")
	require.NoError(t, err)

	var results []stepResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 4)
	want := [][2]string{{"800px", "800px"}, {"700px", "650px"}, {"700px", "400px"}, {"700px", "700px"}}
	for i, r := range results {
		assert.Equal(t, want[i][0], r.Variables["--svh"], r.Step)
		assert.Equal(t, want[i][1], r.Variables["--lvh"], r.Step)
	}
	assert.Equal(t, "keyboard=300", results[2].Step)
	// Window resize and orientationchange, focusin and focusout, and the
	// visual viewport resize stay subscribed.
	assert.Equal(t, 5, results[3].Listeners)
	assert.Greater(t, results[3].Writes, results[0].Writes)
	assert.Contains(t, results[0].CSSText, "color: black;")
}

func TestRunFromURL(t *testing.T) {
	var uas []string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		uas = append(uas, r.Header.Get("User-Agent"))
		w.Write([]byte(`<html><script src="/static/app.js"></script></html>`))
	})
	mux.HandleFunc("/static/app.js", func(w http.ResponseWriter, r *http.Request) {
		uas = append(uas, r.Header.Get("User-Agent"))
		w.Write([]byte(`viewportHeight.initViewportHeight();`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := execute(t, "run", srv.URL+"/", "--ua", uaInstagram, "--inner", "700", "--visual", "650")
	require.NoError(t, err)
	assert.Contains(t, out, "--svh: 700px; --lvh: 650px;")
	assert.Equal(t, []string{uaInstagram, uaInstagram}, uas)
}

func TestRunVisualStep(t *testing.T) {
	page := writePage(t, `<script>viewportHeight.initViewportHeight();</script>`)
	out, err := execute(t, "run", page, "--json", "--ua", uaIOSWrapped, "--inner", "800", "-e", "visual=610")
	require.NoError(t, err)
	var results []stepResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "visual=610", results[1].Step)
	assert.Equal(t, 800.0, results[1].InnerHeight)
	assert.Equal(t, "610px", results[1].Variables["--lvh"])
}

func TestRunInitFromGo(t *testing.T) {
	page := writePage(t, `<html><body><p>no scripts</p></body></html>`)
	out, err := execute(t, "run", page, "--init", "--ua", uaDesktop)
	require.NoError(t, err)
	assert.Contains(t, out, "--svh: 100svh; --lvh: 100lvh;")
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorContains(t, err, "reading page")

	page := writePage(t, `<script>throw new Error("broken page")</script>`)
	_, err = execute(t, "run", page)
	assert.ErrorContains(t, err, "broken page")

	_, err = execute(t, "run", page, "-e", "shake")
	assert.ErrorContains(t, err, `unknown step "shake"`)
}

func TestSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	out, err := execute(t, "snapshot", "-o", path, "--ua", uaInstagram, "--inner", "600", "-e", "keyboard=200")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = execute(t, "snapshot", "--compare", path, "--ua", uaInstagram, "--inner", "600", "-e", "keyboard=200")
	require.NoError(t, err)

	_, err = execute(t, "snapshot", "--compare", path, "--ua", uaInstagram, "--inner", "600")
	assert.ErrorContains(t, err, "snapshot differs")
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		in      string
		want    Step
		wantErr bool
	}{
		{in: "resize=390:700", want: Step{Kind: "resize", Width: 390, Inner: 700, Visual: 700}},
		{in: "resize=390:700:650", want: Step{Kind: "resize", Width: 390, Inner: 700, Visual: 650}},
		{in: "keyboard=320", want: Step{Kind: "keyboard", Visual: 320}},
		{in: "visual=610", want: Step{Kind: "visual", Visual: 610}},
		{in: " rotate ", want: Step{Kind: "rotate"}},
		{in: "focus", want: Step{Kind: "focus"}},
		{in: "blur", want: Step{Kind: "blur"}},
		{in: "resize=390", wantErr: true},
		{in: "resize=1:2:3:4", wantErr: true},
		{in: "keyboard=", wantErr: true},
		{in: "keyboard=-5", wantErr: true},
		{in: "keyboard=tall", wantErr: true},
		{in: "rotate=90", wantErr: true},
		{in: "tilt", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStep(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "resize=390:700:650", Step{Kind: "resize", Width: 390, Inner: 700, Visual: 650}.String())
}
