// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content holds the static copy of the site: feature lists,
// technology badges, contact entries and footer links. Everything here is a
// compile-time literal; nothing is loaded or mutated at runtime.
package content

import (
	"math"
	"strconv"
	"strings"
)

// SiteName is the brand shown in the navigation and footer.
const SiteName = "ReactVite"

// Tagline is the brand description shown in the footer.
const Tagline = "A modern React application built with Vite, featuring beautiful design and optimal performance."

// Card is a titled description with an icon, used by the feature grid and
// the value cards.
type Card struct {
	Icon        string
	Title       string
	Description string
}

// Stat is a single statistic tile.
type Stat struct {
	Value string
	Label string
}

// Link is a navigable hyperlink. Href is either a site route ("/about"),
// a scheme link ("mailto:", "tel:") or an absolute URL.
type Link struct {
	Label string
	Href  string
	Icon  string
}

// External reports whether the link is an absolute http(s) URL, which is
// the only case that opens in a new tab.
func (l Link) External() bool {
	return strings.HasPrefix(l.Href, "http://") || strings.HasPrefix(l.Href, "https://")
}

// ContactEntry is one row of the contact details list.
type ContactEntry struct {
	Icon    string
	Title   string
	Content string
	Link    Link
}

// Features is the Home page grid.
var Features = []Card{
	{Icon: "zap", Title: "Lightning Fast", Description: "Built with Vite for incredibly fast build times and hot module replacement."},
	{Icon: "code", Title: "Modern Stack", Description: "React 18, TypeScript, and Tailwind CSS for the best developer experience."},
	{Icon: "shield", Title: "Type Safe", Description: "Full TypeScript support ensures your code is reliable and maintainable."},
	{Icon: "smartphone", Title: "Responsive", Description: "Beautiful, mobile-first design that works perfectly on all devices."},
}

// Technologies is the About page badge list, in display order.
var Technologies = []string{
	"React 18", "Vite", "TypeScript", "Tailwind CSS",
	"React Router", "Radix UI", "ESLint", "PostCSS",
}

// Highlights are the check items under the About hero.
var Highlights = []string{"Production Ready", "Type Safe", "Optimized"}

// Values is the About page value cards.
var Values = []Card{
	{Icon: "target", Title: "Performance First", Description: "We prioritize speed and efficiency in every aspect of development, from build times to runtime performance."},
	{Icon: "users", Title: "Developer Experience", Description: "Creating tools and workflows that make developers more productive and happy to work with."},
	{Icon: "lightbulb", Title: "Innovation", Description: "Staying ahead of the curve with the latest technologies and best practices in web development."},
}

// Stats is the About page statistics row.
var Stats = []Stat{
	{Value: "100%", Label: "Type Safe"},
	{Value: "⚡", Label: "Lightning Fast"},
	{Value: "📱", Label: "Mobile First"},
	{Value: "🚀", Label: "Production Ready"},
}

// ContactEntries is the Contact page details list.
var ContactEntries = []ContactEntry{
	{Icon: "mail", Title: "Email", Content: "hello@reactvite.dev", Link: Link{Href: "mailto:hello@reactvite.dev"}},
	{Icon: "phone", Title: "Phone", Content: "+1 (555) 123-4567", Link: Link{Href: "tel:+15551234567"}},
	{Icon: "map-pin", Title: "Address", Content: "123 Tech Street, San Francisco, CA 94105", Link: Link{Href: "https://maps.google.com"}},
}

// SocialLinks are shown under "Follow Us" on the Contact page.
var SocialLinks = []Link{
	{Label: "GitHub", Href: "https://github.com", Icon: "github"},
	{Label: "Twitter", Href: "https://twitter.com", Icon: "twitter"},
	{Label: "LinkedIn", Href: "https://linkedin.com", Icon: "linkedin"},
}

// NavLinks are the site's internal routes, used by the header and the
// footer "Quick Links" column.
var NavLinks = []Link{
	{Label: "Home", Href: "/"},
	{Label: "About", Href: "/about"},
	{Label: "Contact", Href: "/contact"},
}

// Resources is the footer documentation column.
var Resources = []Link{
	{Label: "Vite Documentation", Href: "https://vitejs.dev"},
	{Label: "React Documentation", Href: "https://react.dev"},
	{Label: "Tailwind CSS", Href: "https://tailwindcss.com"},
}

// FooterContact is the footer contact column.
var FooterContact = []string{"info@reactvite.dev", "+1 (555) 123-4567"}

// LegalLinks sit next to the copyright line.
var LegalLinks = []Link{
	{Label: "Privacy Policy", Href: "/privacy"},
	{Label: "Terms of Service", Href: "/terms"},
}

// AnimationDelay returns the CSS animation-delay for the item at index when
// items are staggered by step seconds, e.g. AnimationDelay(3, 0.1) = "0.3s".
func AnimationDelay(index int, step float64) string {
	secs := math.Round(float64(index)*step*1000) / 1000
	return strconv.FormatFloat(secs, 'f', -1, 64) + "s"
}
