package html

import (
	"fmt"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ScriptFetcher loads the body of an external script given its src.
type ScriptFetcher func(src string) (string, error)

// ParseWithFetcher extracts the document parts of content, loading
// <script src> through fetch. A nil fetch skips external scripts.
func ParseWithFetcher(content string, fetch ScriptFetcher) (*Document, error) {
	doc := NewDocument()
	z := xhtml.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("tokenizing HTML: %w", err)
			}
			return doc, nil
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Html:
				doc.RootStyle = attr(tok, "style")
			case atom.Meta:
				if name := attr(tok, "name"); name != "" {
					doc.Metas[strings.ToLower(name)] = attr(tok, "content")
				}
			case atom.Title:
				if z.Next() == xhtml.TextToken {
					doc.Title = strings.TrimSpace(string(z.Text()))
				}
			case atom.Script:
				if !isClassicScript(attr(tok, "type")) {
					continue
				}
				if src := attr(tok, "src"); src != "" {
					if fetch == nil {
						continue
					}
					body, err := fetch(src)
					if err != nil {
						return nil, fmt.Errorf("loading script %s: %w", src, err)
					}
					doc.Scripts = append(doc.Scripts, body)
					continue
				}
				if tt == xhtml.StartTagToken && z.Next() == xhtml.TextToken {
					doc.Scripts = append(doc.Scripts, string(z.Text()))
				}
			}
		}
	}
}

func attr(tok xhtml.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// isClassicScript reports whether a script type runs as a classic script.
// Modules are skipped since the runtime has no module loader.
func isClassicScript(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "text/javascript", "application/javascript", "text/ecmascript", "application/ecmascript":
		return true
	}
	return false
}
