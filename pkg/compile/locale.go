package compile

import "github.com/nextroute-dev/nextroute/pkg/routes"

// localeBlock emits every locale-handling rule. The block is all-or-nothing:
// with i18n unset it contributes nothing, with i18n set every applicable
// group appears. All locale codes spliced into sources go through the
// pattern escaper; destinations are literal templates and stay unescaped.
func (c *compiler) localeBlock() []routes.Rule {
	i18n := c.desc.I18N
	if i18n == nil {
		return nil
	}

	var rules []routes.Rule

	// Domain-derived locale prefixing via $wildcard, root then general.
	rules = append(rules,
		routes.Rule{
			Src:      c.rootSrc(),
			Dest:     c.join("/$wildcard"),
			Continue: true,
		},
		routes.Rule{
			Src:      c.nonLocaleSrc(),
			Dest:     c.join("/$wildcard/$1"),
			Continue: true,
		},
	)

	detection := i18n.DetectionEnabled()

	if len(i18n.Domains) > 0 && detection {
		rules = append(rules, routes.Rule{
			Src: "^" + c.prefix + "/?(?:" + c.localeAlt + ")?/?$",
			Locale: &routes.Locale{
				Redirect: c.domainRedirects(),
				Cookie:   routes.LocaleCookie,
			},
			Continue: true,
		})
	}

	if detection {
		rules = append(rules, routes.Rule{
			Src: c.rootSrc(),
			Locale: &routes.Locale{
				Redirect: c.localeRedirects(),
				Cookie:   routes.LocaleCookie,
			},
			Continue: true,
		})
	}

	// Default-locale rewrites: the bare base path and every non-_next,
	// non-locale-prefixed path gain the default locale prefix.
	rules = append(rules,
		routes.Rule{
			Src:      c.rootSrc(),
			Dest:     c.join("/" + i18n.DefaultLocale),
			Continue: true,
		},
		routes.Rule{
			Src:      c.nonLocaleSrc(),
			Dest:     c.join("/"+i18n.DefaultLocale, "/$1"),
			Continue: true,
		},
	)

	return rules
}

// domainRedirects maps every locale served by a dedicated domain to that
// domain's URL.
func (c *compiler) domainRedirects() map[string]string {
	redirects := make(map[string]string)
	for _, d := range c.desc.I18N.Domains {
		scheme := "https"
		if d.HTTP {
			scheme = "http"
		}
		redirects[d.DefaultLocale] = scheme + "://" + d.Domain + "/"
		for _, locale := range d.Locales {
			redirects[locale] = scheme + "://" + d.Domain + "/" + locale
		}
	}
	return redirects
}

// localeRedirects maps every locale to its path on this deployment; the
// default locale maps to the bare root.
func (c *compiler) localeRedirects() map[string]string {
	i18n := c.desc.I18N
	redirects := make(map[string]string, len(i18n.Locales))
	for _, locale := range i18n.Locales {
		if locale == i18n.DefaultLocale {
			redirects[locale] = c.join("/")
		} else {
			redirects[locale] = c.join("/" + locale)
		}
	}
	return redirects
}

// localeStripForPublicFiles runs in the miss phase: it strips a locale
// prefix so public files and non-prefixed outputs still resolve. When locale
// detection is disabled, a default-locale rewrite pair is added so that
// resolution still runs after all other routing completes.
func (c *compiler) localeStripForPublicFiles() []routes.Rule {
	i18n := c.desc.I18N
	if i18n == nil {
		return nil
	}

	rules := []routes.Rule{{
		Src:   "^" + c.prefix + "/?(?:" + c.localeAlt + ")/(.*)$",
		Dest:  c.join("/$1"),
		Check: true,
	}}

	if !i18n.DetectionEnabled() {
		rules = append(rules,
			routes.Rule{
				Src:   c.rootSrc(),
				Dest:  c.join("/" + i18n.DefaultLocale),
				Check: true,
			},
			routes.Rule{
				Src:   c.nonLocaleSrc(),
				Dest:  c.join("/"+i18n.DefaultLocale, "/$1"),
				Check: true,
			},
		)
	}

	return rules
}
