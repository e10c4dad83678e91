package euronet

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ZoneNames scrapes the wired zones page and returns the zone names in panel
// order. The position of each name is the zone bit index.
func (c *Client) ZoneNames(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, zonesPath, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	names, err := parseZoneNames(body)
	if err != nil {
		return nil, fmt.Errorf("could not parse zones page: %w", err)
	}
	log.Debug("zone names", "count", len(names))
	return names, nil
}

func parseZoneNames(page string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	var names []string
	var walk func(n *html.Node, inTable, inBody bool)
	walk = func(n *html.Node, inTable, inBody bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Table:
				inTable = hasClass(n, "table")
				inBody = false
			case atom.Tbody:
				inBody = inTable
			case atom.Th:
				if inBody && hasAttr(n, "bgcolor") {
					names = append(names, zoneName(text(n)))
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inTable, inBody)
		}
	}
	walk(doc, false, false)
	return names, nil
}

// strips the "N -" prefix the panel puts in front of every name.
func zoneName(s string) string {
	s = strings.TrimSpace(s)
	if _, after, ok := strings.Cut(s, "-"); ok {
		return strings.TrimSpace(after)
	}
	return s
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
