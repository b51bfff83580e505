package protected

import (
	"github.com/jmylchreest/tabtint/internal/colour"
)

// homePrefixes are the new-tab surfaces coloured with the HOME code.
var homePrefixes = []string{
	"about:home",
	"about:newtab",
	"about:firefoxview",
}

// aboutPages maps about: page names to their built-in chrome colours.
var aboutPages = map[string]colour.SchemePair{
	"addons":          colour.Pair(colour.RGB(249, 249, 251), colour.RGB(28, 27, 34)),
	"config":          colour.Pair(colour.RGB(249, 249, 251), colour.RGB(28, 27, 34)),
	"debugging":       colour.Pair(colour.RGB(249, 249, 250), colour.RGB(28, 27, 34)),
	"devtools":        colour.Pair(colour.RGB(249, 249, 250), colour.RGB(12, 12, 13)),
	"downloads":       colour.Pair(colour.RGB(249, 249, 251), colour.RGB(28, 27, 34)),
	"logins":          colour.Pair(colour.RGB(238, 238, 244), colour.RGB(43, 42, 51)),
	"preferences":     colour.Pair(colour.RGB(249, 249, 251), colour.RGB(28, 27, 34)),
	"privatebrowsing": colour.DarkOnly(colour.RGB(37, 3, 60)),
	"processes":       colour.Pair(colour.RGB(239, 239, 242), colour.RGB(43, 42, 51)),
	"profiles":        colour.Pair(colour.RGB(249, 249, 251), colour.RGB(28, 27, 34)),
	"protections":     colour.Pair(colour.RGB(240, 240, 244), colour.RGB(28, 27, 34)),
	"settings":        colour.Pair(colour.RGB(249, 249, 251), colour.RGB(28, 27, 34)),
	"support":         colour.Pair(colour.RGB(249, 249, 251), colour.RGB(28, 27, 34)),
	"sync-log":        colour.Pair(colour.RGB(236, 236, 236), colour.RGB(40, 40, 40)),
	"welcome":         colour.Pair(colour.RGB(255, 255, 255), colour.RGB(43, 42, 51)),
}

// restrictedDomains are first-party hosts where extensions cannot run
// content scripts.
var restrictedDomains = map[string]colour.SchemePair{
	"accounts-static.cdn.mozilla.net": colour.Pair(colour.RGB(251, 251, 254), colour.RGB(28, 27, 34)),
	"accounts.firefox.com":            colour.Pair(colour.RGB(251, 251, 254), colour.RGB(28, 27, 34)),
	"addons.cdn.mozilla.net":          colour.Pair(colour.RGB(32, 18, 58), colour.RGB(32, 18, 58)),
	"addons.mozilla.org":              colour.Pair(colour.RGB(32, 18, 58), colour.RGB(32, 18, 58)),
	"content.cdn.mozilla.net":         {},
	"discovery.addons.mozilla.org":    {},
	"install.mozilla.org":             {},
	"oauth.accounts.firefox.com":      colour.Pair(colour.RGB(251, 251, 254), colour.RGB(28, 27, 34)),
	"profile.accounts.firefox.com":    colour.Pair(colour.RGB(251, 251, 254), colour.RGB(28, 27, 34)),
	"support.mozilla.org":             colour.Pair(colour.RGB(255, 255, 255), colour.RGB(21, 20, 26)),
	"sync.services.mozilla.com":       {},
}

var (
	textExtensions  = []string{".txt", ".css", ".jsm", ".js"}
	imageExtensions = []string{".png", ".jpg"}
)
