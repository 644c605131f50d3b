package scanner

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/Banumathkovinda/web-app-security-tester/internal/model"
)

// ParsedPage contains the content extracted from an HTML document.
//
// Design decision: We return a comprehensive result struct rather than
// multiple parse methods because:
//  1. Single parsing pass is more efficient
//  2. Related data can be collected together
//  3. Caller can choose what to use
type ParsedPage struct {
	// Title is the page title from the <title> tag.
	Title string

	// Forms contains information about HTML forms.
	Forms []model.Form

	// Scripts contains external script source URLs.
	Scripts []string

	// Images contains image source URLs.
	Images []string

	// Stylesheets contains stylesheet URLs from <link rel="stylesheet">.
	Stylesheets []string

	// Iframes contains iframe source URLs.
	Iframes []string
}

// ParsePage parses HTML content and extracts the elements the security
// checks care about. Relative URLs are resolved against the page URL.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
func ParsePage(pageURL string, content []byte) (*ParsedPage, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	result := &ParsedPage{
		Forms:       make([]model.Form, 0),
		Scripts:     make([]string, 0),
		Images:      make([]string, 0),
		Stylesheets: make([]string, 0),
		Iframes:     make([]string, 0),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			processElement(n, base, result)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// processElement handles a single HTML element node.
func processElement(n *html.Node, base *url.URL, result *ParsedPage) {
	switch n.Data {
	case "title":
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "form":
		form := model.Form{
			Action: resolveURL(base, getAttr(n, "action")),
			Method: strings.ToUpper(getAttr(n, "method")),
			Inputs: make([]model.FormInput, 0),
		}
		if form.Method == "" {
			form.Method = "GET"
		}
		extractInputs(n, &form)
		result.Forms = append(result.Forms, form)

	case "script":
		if src := getAttr(n, "src"); src != "" {
			if resolved := resolveURL(base, src); resolved != "" {
				result.Scripts = append(result.Scripts, resolved)
			}
		}

	case "img":
		if src := getAttr(n, "src"); src != "" {
			if resolved := resolveURL(base, src); resolved != "" {
				result.Images = append(result.Images, resolved)
			}
		}

	case "iframe":
		if src := getAttr(n, "src"); src != "" {
			if resolved := resolveURL(base, src); resolved != "" {
				result.Iframes = append(result.Iframes, resolved)
			}
		}

	case "link":
		if getAttr(n, "rel") == "stylesheet" {
			if href := getAttr(n, "href"); href != "" {
				if resolved := resolveURL(base, href); resolved != "" {
					result.Stylesheets = append(result.Stylesheets, resolved)
				}
			}
		}
	}
}

// extractInputs recursively extracts input fields from a form element.
func extractInputs(n *html.Node, form *model.Form) {
	if n.Type == html.ElementNode && (n.Data == "input" || n.Data == "select" || n.Data == "textarea") {
		input := model.FormInput{
			Name:         getAttr(n, "name"),
			Type:         getAttr(n, "type"),
			Autocomplete: getAttr(n, "autocomplete"),
		}
		if input.Type == "" {
			switch n.Data {
			case "textarea":
				input.Type = "textarea"
			case "select":
				input.Type = "select"
			default:
				input.Type = "text"
			}
		}
		form.Inputs = append(form.Inputs, input)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractInputs(c, form)
	}
}

// resolveURL resolves a relative URL against the base URL.
//
// Design decision: We resolve URLs rather than storing them as-is because:
//  1. Makes deduplication easier
//  2. Same-origin checks need absolute URLs
//  3. Reduces ambiguity in results
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
