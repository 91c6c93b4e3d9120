package viewport

import "github.com/dlclark/regexp2"

// DefaultApps matches the user agents of common in-app browsers.
var DefaultApps = regexp2.MustCompile(
	`(FBAN|FBAV|Instagram|LinkedIn|Twitter|Snapchat|TikTok|WhatsApp|Telegram|Line|WeChat|Messenger)`,
	regexp2.IgnoreCase)

var (
	webViewPattern = regexp2.MustCompile(`(; wv\)|WebView)`, regexp2.IgnoreCase)
	iOSPattern     = regexp2.MustCompile(`(iPhone|iPod|iPad)`, regexp2.IgnoreCase)
	safariPattern  = regexp2.MustCompile(`Safari`, regexp2.IgnoreCase)
)

// Reason records which rule classified a user agent as in-app.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonForced
	ReasonWebView
	ReasonApp
	ReasonIOSWrapper
)

func (r Reason) String() string {
	switch r {
	case ReasonForced:
		return "forced"
	case ReasonWebView:
		return "webview"
	case ReasonApp:
		return "app"
	case ReasonIOSWrapper:
		return "ios-wrapper"
	}
	return "none"
}

// Classify returns the first rule that marks ua as an in-app browser, or
// ReasonNone. A nil apps pattern means DefaultApps.
func Classify(ua string, force bool, apps *regexp2.Regexp) Reason {
	if force {
		return ReasonForced
	}
	if apps == nil {
		apps = DefaultApps
	}
	apps = caseless(apps)
	switch {
	case matches(webViewPattern, ua):
		return ReasonWebView
	case matches(apps, ua):
		return ReasonApp
	case IsIOS(ua) && !matches(safariPattern, ua):
		return ReasonIOSWrapper
	}
	return ReasonNone
}

// IsInApp reports whether ua belongs to an in-app browser or WebView that
// needs pixel compensation instead of native viewport units.
func IsInApp(ua string, force bool, apps *regexp2.Regexp) bool {
	return Classify(ua, force, apps) != ReasonNone
}

// IsIOS reports whether ua names an iPhone, iPod or iPad.
func IsIOS(ua string) bool {
	return matches(iOSPattern, ua)
}

// caseless returns re with IgnoreCase set, recompiling it when the caller
// built it without. A pattern that fails to recompile is used as is.
func caseless(re *regexp2.Regexp) *regexp2.Regexp {
	opts := re.RegexOptions()
	if opts&regexp2.IgnoreCase != 0 {
		return re
	}
	ci, err := regexp2.Compile(re.String(), opts|regexp2.IgnoreCase)
	if err != nil {
		return re
	}
	ci.MatchTimeout = re.MatchTimeout
	return ci
}

// matches treats a match timeout as no match.
func matches(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}
