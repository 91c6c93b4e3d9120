package viewport_test

import (
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vhfix/pkg/host"
	"vhfix/pkg/viewport"
)

type update struct{ safe, large float64 }

func TestInitNativeBranch(t *testing.T) {
	env := newHost(uaAndroidChrome, 800, 780)
	var calls int
	stop := viewport.New(env).Init(viewport.Options{OnUpdate: func(float64, float64) { calls++ }})
	require.NotNil(t, stop)

	assert.Equal(t, viewport.NativeSafe, env.Root().GetPropertyValue("--svh"))
	assert.Equal(t, viewport.NativeLarge, env.Root().GetPropertyValue("--lvh"))
	assert.Zero(t, env.Win().TotalListeners())
	assert.Zero(t, env.Win().Visual().TotalListeners())
	assert.Zero(t, calls, "onUpdate only fires for pixel updates")

	env.Win().Resize(390, 500, 500)
	assert.Equal(t, viewport.NativeSafe, env.Root().GetPropertyValue("--svh"))
	assert.NotPanics(t, func() { stop(); stop() })
}

func TestInitNativeBranchCustomNames(t *testing.T) {
	env := newHost(uaDesktop, 800, 800)
	viewport.New(env).Init(viewport.Options{VariableNames: viewport.VariableNames{Safe: "--small"}})
	assert.Equal(t, "100svh", env.Root().GetPropertyValue("--small"))
	assert.Equal(t, "100lvh", env.Root().GetPropertyValue("--lvh"))
	assert.Empty(t, env.Root().GetPropertyValue("--svh"))
}

func TestInitForcedNonIOS(t *testing.T) {
	env := newHost(uaAndroidChrome, 800, 780)
	viewport.New(env).Init(viewport.Options{ForceInApp: true})
	assert.Equal(t, "800px", env.Root().GetPropertyValue("--svh"))
	assert.Equal(t, "800px", env.Root().GetPropertyValue("--lvh"))
}

func TestInitForcedIOS(t *testing.T) {
	env := newHost(uaIOSSafari, 800, 780)
	viewport.New(env).Init(viewport.Options{ForceInApp: true})
	assert.Equal(t, "800px", env.Root().GetPropertyValue("--svh"))
	assert.Equal(t, "780px", env.Root().GetPropertyValue("--lvh"))
}

func TestInitCustomAppsIgnoreCase(t *testing.T) {
	env := newHost(uaAndroidChrome+" myshellapp/1.0", 800, 780)
	apps := regexp2.MustCompile(`MyShellApp`, regexp2.None)
	stop := viewport.New(env).Init(viewport.Options{Apps: apps})
	defer stop()
	assert.Equal(t, "800px", env.Root().GetPropertyValue("--svh"))
	assert.Equal(t, "800px", env.Root().GetPropertyValue("--lvh"))
}

func TestInitIOSWithoutCap(t *testing.T) {
	env := newHost(uaIOSWrapped, 800, 780)
	viewport.New(env).Init(viewport.Options{UseMinOnIOS: viewport.Bool(false)})
	assert.Equal(t, "800px", env.Root().GetPropertyValue("--lvh"))
}

func TestInitCompensatedUpdates(t *testing.T) {
	env := newHost(uaAndroidWebView, 800, 780)
	var got []update
	stop := viewport.New(env).Init(viewport.Options{
		OnUpdate: func(s, l float64) { got = append(got, update{s, l}) },
	})
	require.Equal(t, []update{{800, 800}}, got, "initial publish must not wait for an event")

	win := env.Win()
	assert.Equal(t, 1, win.ListenerCount(viewport.EventResize))
	assert.Equal(t, 1, win.ListenerCount(viewport.EventOrientationChange))
	assert.Equal(t, 0, win.ListenerCount(viewport.EventFocusIn))
	assert.Equal(t, 1, win.Visual().ListenerCount(viewport.EventResize))

	win.Visual().SetHeight(900)
	assert.Equal(t, "900px", env.Root().GetPropertyValue("--lvh"))

	win.Resize(390, 600, 600)
	assert.Equal(t, "600px", env.Root().GetPropertyValue("--svh"))
	assert.Equal(t, "600px", env.Root().GetPropertyValue("--lvh"))

	win.DispatchEvent(viewport.EventOrientationChange)
	// Resize fires on the window and then on the changed visual viewport.
	assert.Equal(t, []update{{800, 800}, {800, 900}, {600, 600}, {600, 600}, {600, 600}}, got)

	stop()
	assert.Zero(t, win.TotalListeners())
	assert.Zero(t, win.Visual().TotalListeners())

	win.Resize(390, 500, 500)
	assert.Len(t, got, 5, "no updates after dispose")
	assert.Equal(t, "600px", env.Root().GetPropertyValue("--svh"))
	assert.NotPanics(t, assert.PanicTestFunc(stop))
}

func TestInitFocusTracking(t *testing.T) {
	env := newHost(uaIOSWrapped, 800, 800)
	var got []update
	stop := viewport.New(env).Init(viewport.Options{
		UpdateOnFocus: true,
		OnUpdate:      func(s, l float64) { got = append(got, update{s, l}) },
	})
	win := env.Win()
	assert.Equal(t, 1, win.ListenerCount(viewport.EventFocusIn))
	assert.Equal(t, 1, win.ListenerCount(viewport.EventFocusOut))

	win.ShowKeyboard(300)
	assert.Equal(t, "500px", env.Root().GetPropertyValue("--lvh"))
	win.HideKeyboard()
	assert.Equal(t, "800px", env.Root().GetPropertyValue("--lvh"))
	assert.Len(t, got, 5)

	stop()
	assert.Zero(t, win.TotalListeners())
}

func TestInitLeavesOtherListeners(t *testing.T) {
	env := newHost(uaAndroidWebView, 800, 800)
	var foreign int
	other := viewport.NewListener(func(viewport.Event) { foreign++ })
	env.Win().AddEventListener(viewport.EventResize, other)

	b := viewport.New(env)
	first := b.Init(viewport.Options{})
	second := b.Init(viewport.Options{VariableNames: viewport.VariableNames{Safe: "--b-svh", Large: "--b-lvh"}})
	assert.Equal(t, 3, env.Win().ListenerCount(viewport.EventResize))

	first()
	assert.Equal(t, 2, env.Win().ListenerCount(viewport.EventResize))
	env.Win().Resize(390, 700, 700)
	assert.Equal(t, 1, foreign)
	assert.Equal(t, "700px", env.Root().GetPropertyValue("--b-svh"))
	assert.Equal(t, "800px", env.Root().GetPropertyValue("--svh"))

	second()
	assert.Equal(t, 1, env.Win().ListenerCount(viewport.EventResize))
}

func TestInitWithoutHost(t *testing.T) {
	var got []update
	var stop viewport.Disposer
	require.NotPanics(t, func() {
		stop = viewport.New(nil).Init(viewport.Options{
			ForceInApp: true,
			OnUpdate:   func(s, l float64) { got = append(got, update{s, l}) },
		})
	})
	assert.Equal(t, []update{{0, 0}}, got)
	assert.NotPanics(t, func() { stop(); stop() })

	stop = viewport.New(viewport.NoHost).Init(viewport.Options{})
	assert.NotPanics(t, assert.PanicTestFunc(stop))
}

func TestInitWithoutDocument(t *testing.T) {
	env := host.New(host.Config{UserAgent: uaAndroidWebView, InnerHeight: 800, NoDocument: true})
	var got []update
	stop := viewport.New(env).Init(viewport.Options{OnUpdate: func(s, l float64) { got = append(got, update{s, l}) }})
	env.Win().Resize(390, 700, 700)
	assert.Equal(t, []update{{800, 800}, {700, 700}, {700, 700}}, got)
	stop()
}

func TestInitRawRejectsBeforeMutation(t *testing.T) {
	env := newHost(uaAndroidWebView, 800, 780)
	stop, err := viewport.New(env).InitRaw(map[string]any{"forceInApp": "yes"})
	require.ErrorIs(t, err, viewport.ErrInvalidOptions)
	assert.Contains(t, err.Error(), "forceInApp must be a boolean")
	assert.Zero(t, env.Root().Writes())
	assert.Zero(t, env.Win().TotalListeners())
	assert.NotPanics(t, assert.PanicTestFunc(stop))
}

func TestSetViewportHeightAliases(t *testing.T) {
	env := newHost(uaIOSWrapped, 800, 780)
	stop := viewport.New(env).SetViewportHeight(viewport.Options{})
	assert.Equal(t, "780px", env.Root().GetPropertyValue("--lvh"))
	stop()

	env = newHost(uaDesktop, 800, 780)
	stop, err := viewport.New(env).SetViewportHeightRaw(map[string]any{"forceInApp": true})
	require.NoError(t, err)
	assert.Equal(t, "800px", env.Root().GetPropertyValue("--lvh"))
	stop()
}
