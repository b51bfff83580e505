// Package policy holds user site rules and the lookup that picks the rule
// applying to a page or add-on.
package policy

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-hclog"
)

// HeaderType says what a policy header identifies.
type HeaderType string

const (
	HeaderURL     HeaderType = "URL"
	HeaderAddonID HeaderType = "ADDON_ID"
)

// Type says how a policy derives the colour.
type Type string

const (
	// TypeColour applies a literal colour string.
	TypeColour Type = "COLOUR"
	// TypeThemeColour says whether the page's theme-color tag should be used.
	TypeThemeColour Type = "THEME_COLOUR"
	// TypeQuerySelector samples the element matched by a CSS selector.
	TypeQuerySelector Type = "QUERY_SELECTOR"
)

// Policy is a single user rule.
type Policy struct {
	HeaderType HeaderType `json:"headerType" mapstructure:"header_type" validate:"required,oneof=URL ADDON_ID"`
	Header     string     `json:"header" mapstructure:"header" validate:"required"`
	Type       Type       `json:"type" mapstructure:"type" validate:"required,oneof=COLOUR THEME_COLOUR QUERY_SELECTOR"`
	Value      any        `json:"value" mapstructure:"value"`
}

// ColourValue returns the literal colour of a COLOUR policy.
func (p *Policy) ColourValue() string {
	s, _ := p.Value.(string)
	return s
}

// UseTheme returns the flag of a THEME_COLOUR policy.
func (p *Policy) UseTheme() bool {
	b, _ := p.Value.(bool)
	return b
}

// Selector returns the CSS selector of a QUERY_SELECTOR policy.
func (p *Policy) Selector() string {
	s, _ := p.Value.(string)
	return s
}

// IsLiteralURL reports whether p is a COLOUR rule keyed by URL. Such rules
// short-circuit resolution before the page is queried.
func (p *Policy) IsLiteralURL() bool {
	return p != nil && p.Type == TypeColour && p.HeaderType == HeaderURL
}

// String implements fmt.Stringer.
func (p *Policy) String() string {
	return fmt.Sprintf("%s %q -> %s %v", p.HeaderType, p.Header, p.Type, p.Value)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(valueMatchesType, Policy{})
	return v
}

// valueMatchesType checks the dynamic Value against the policy Type.
func valueMatchesType(sl validator.StructLevel) {
	p := sl.Current().Interface().(Policy)
	switch p.Type {
	case TypeColour:
		if s, ok := p.Value.(string); !ok || strings.TrimSpace(s) == "" {
			sl.ReportError(p.Value, "Value", "value", "colour", "")
		}
	case TypeThemeColour:
		if _, ok := p.Value.(bool); !ok {
			sl.ReportError(p.Value, "Value", "value", "bool", "")
		}
	case TypeQuerySelector:
		if _, ok := p.Value.(string); !ok {
			sl.ReportError(p.Value, "Value", "value", "selector", "")
		}
	}
	if p.HeaderType == HeaderURL && isRegexHeader(p.Header) {
		if _, err := regexp.Compile(p.Header[1 : len(p.Header)-1]); err != nil {
			sl.ReportError(p.Header, "Header", "header", "regexp", "")
		}
	}
}

// Validate reports whether p is well formed.
func (p *Policy) Validate() error {
	return validate.Struct(p)
}

// Set is an ordered, validated list of policies.
type Set struct {
	policies []compiled
}

type compiled struct {
	Policy
	re *regexp.Regexp
}

// NewSet validates policies and keeps the valid ones in order. Invalid
// policies are logged and treated as absent.
func NewSet(policies []Policy, logger hclog.Logger) *Set {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &Set{}
	for i, p := range policies {
		if err := p.Validate(); err != nil {
			logger.Warn("dropping invalid policy", "index", i, "policy", p.String(), "error", err)
			continue
		}
		c := compiled{Policy: p}
		if p.HeaderType == HeaderURL && isRegexHeader(p.Header) {
			c.re = regexp.MustCompile(p.Header[1 : len(p.Header)-1])
		}
		s.policies = append(s.policies, c)
	}
	return s
}

// Len returns the number of valid policies.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.policies)
}

// Policies returns a copy of the valid policies.
func (s *Set) Policies() []Policy {
	if s == nil {
		return nil
	}
	out := make([]Policy, len(s.policies))
	for i, c := range s.policies {
		out[i] = c.Policy
	}
	return out
}

// Match returns the URL policy applying to rawURL, or nil. When several
// policies match, the one listed last wins.
func (s *Set) Match(rawURL string) *Policy {
	if s == nil || rawURL == "" {
		return nil
	}
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	var match *Policy
	for i := range s.policies {
		c := &s.policies[i]
		if c.HeaderType != HeaderURL {
			continue
		}
		if c.matches(rawURL, host) {
			match = &c.Policy
		}
	}
	if match == nil {
		return nil
	}
	p := *match
	return &p
}

// MatchAddon returns the add-on policy for id, or nil.
func (s *Set) MatchAddon(id string) *Policy {
	if s == nil || id == "" {
		return nil
	}
	var match *Policy
	for i := range s.policies {
		c := &s.policies[i]
		if c.HeaderType == HeaderAddonID && c.Header == id {
			match = &c.Policy
		}
	}
	if match == nil {
		return nil
	}
	p := *match
	return &p
}

func (c *compiled) matches(rawURL, host string) bool {
	header := strings.TrimSpace(c.Header)
	switch {
	case c.re != nil:
		return c.re.MatchString(rawURL)
	case strings.Contains(header, "://"):
		return strings.TrimSuffix(header, "/") == strings.TrimSuffix(rawURL, "/")
	case host == "":
		return false
	case strings.HasPrefix(header, "*."):
		domain := strings.ToLower(header[2:])
		return host == domain || strings.HasSuffix(host, "."+domain)
	default:
		return strings.EqualFold(header, host)
	}
}

func isRegexHeader(h string) bool {
	return len(h) > 2 && strings.HasPrefix(h, "/") && strings.HasSuffix(h, "/")
}
