package htmldoc

import (
	"regexp"

	"golang.org/x/net/html"
)

// navigationPattern matches class and id values naming navigation or page
// boilerplate regions.
var navigationPattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget)([^a-z]|$)`)

// exclusionChecker decides whether a located table sits inside a region
// the configured mode skips.
type exclusionChecker struct {
	mode            NavigationExclusionMode
	bodyNode        *html.Node
	topLevelWrapper *html.Node
}

// newExclusionChecker creates a checker for the given mode and document.
func newExclusionChecker(mode NavigationExclusionMode, doc *html.Node) *exclusionChecker {
	ec := &exclusionChecker{mode: mode}
	if mode == NavigationExclusionNone {
		return ec
	}

	ec.bodyNode = findElement(doc, "body")
	if ec.bodyNode == nil {
		ec.bodyNode = doc
	}
	ec.topLevelWrapper = detectTopLevelWrapper(ec.bodyNode)
	return ec
}

// detectTopLevelWrapper returns the only <div> or <main> child of body, if
// the body has no other structural children.
func detectTopLevelWrapper(body *html.Node) *html.Node {
	var wrapper *html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || shouldSkipElement(c.Data) {
			continue
		}
		if (c.Data != "div" && c.Data != "main") || wrapper != nil {
			return nil
		}
		wrapper = c
	}
	return wrapper
}

// excluded reports whether any ancestor of n is a skipped region.
func (ec *exclusionChecker) excluded(n *html.Node) bool {
	if ec.mode == NavigationExclusionNone {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && ec.isBoilerplate(p) {
			return true
		}
	}
	return false
}

// isBoilerplate checks one element against the configured mode.
func (ec *exclusionChecker) isBoilerplate(n *html.Node) bool {
	switch n.Data {
	case "nav", "aside":
		return true
	case "header", "footer":
		if ec.isTopLevel(n) {
			return true
		}
	}

	switch getAttr(n, "role") {
	case "navigation", "complementary":
		return true
	case "banner", "contentinfo":
		if ec.isTopLevel(n) {
			return true
		}
	}

	if ec.mode >= NavigationExclusionStandard {
		if class := getAttr(n, "class"); class != "" && navigationPattern.MatchString(class) {
			return true
		}
		if id := getAttr(n, "id"); id != "" && navigationPattern.MatchString(id) {
			return true
		}
	}
	return false
}

// isTopLevel returns true if the node is a direct child of body or of a
// single top-level wrapper.
func (ec *exclusionChecker) isTopLevel(n *html.Node) bool {
	parent := n.Parent
	if parent == nil {
		return false
	}
	return parent == ec.bodyNode || (ec.topLevelWrapper != nil && parent == ec.topLevelWrapper)
}
