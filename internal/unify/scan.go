package unify

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// span is a half-open byte range into a document.
type span struct {
	start, end int
}

// layout records the offsets of everything the unifier cares about.
// Offsets come from the tokenizer's raw token lengths, so slicing the
// original text with them yields the source bytes untouched.
type layout struct {
	scripts []span // external script elements, open tag through close tag
	markers []span // unified marker meta tags
	payload *span  // inner text of the hydration element

	head     span // the </head> end tag, start -1 when absent
	bodyOpen span // the <body ...> start tag, start -1 when absent
	bodyEnd  int  // offset of the first </body> after bodyOpen, -1 when absent
	htmlEnd  span // the first </html> end tag, start -1 when absent
}

type openScript struct {
	start        int
	contentStart int
	external     bool
	payload      bool
}

func scan(doc string, opts Options) layout {
	l := layout{
		head:     span{-1, -1},
		bodyOpen: span{-1, -1},
		bodyEnd:  -1,
		htmlEnd:  span{-1, -1},
	}
	z := html.NewTokenizer(strings.NewReader(doc))
	pos := 0
	var open *openScript
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return l
		}
		// TagName and TagAttr lowercase the tokenizer buffer in place, so
		// only the raw length is used here.
		start := pos
		pos += len(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script:
				attrs := readAttrs(z, hasAttr)
				_, hasSrc := attrs["src"]
				open = &openScript{
					start:        start,
					contentStart: pos,
					external:     hasSrc,
					payload:      attrs["id"] == opts.PayloadID && attrs["type"] == opts.PayloadType,
				}
			case atom.Meta:
				if readAttrs(z, hasAttr)["name"] == MarkerName {
					l.markers = append(l.markers, span{start, pos})
				}
			case atom.Body:
				if l.bodyOpen.start < 0 {
					l.bodyOpen = span{start, pos}
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script:
				if open == nil {
					continue
				}
				if open.external {
					l.scripts = append(l.scripts, span{open.start, pos})
				}
				if open.payload && l.payload == nil {
					l.payload = &span{open.contentStart, start}
				}
				open = nil
			case atom.Head:
				if l.head.start < 0 {
					l.head = span{start, pos}
				}
			case atom.Body:
				if l.bodyOpen.start >= 0 && l.bodyEnd < 0 {
					l.bodyEnd = start
				}
			case atom.Html:
				if l.htmlEnd.start < 0 {
					l.htmlEnd = span{start, pos}
				}
			}
		}
	}
}

func readAttrs(z *html.Tokenizer, more bool) map[string]string {
	attrs := map[string]string{}
	for more {
		var k, v []byte
		k, v, more = z.TagAttr()
		key := string(k)
		if _, seen := attrs[key]; !seen {
			attrs[key] = string(v)
		}
	}
	return attrs
}

// ExtractPayload returns the trimmed hydration payload of doc, or false when
// doc carries no element with the configured id and content type or that
// element is blank.
func ExtractPayload(doc string, opts Options) (string, bool) {
	l := scan(doc, opts.withDefaults())
	if l.payload == nil {
		return "", false
	}
	p := strings.TrimSpace(doc[l.payload.start:l.payload.end])
	return p, p != ""
}

// ExtractScripts returns every script element with a src attribute, verbatim
// and in document order.
func ExtractScripts(doc string) []string {
	l := scan(doc, Options{}.withDefaults())
	out := make([]string, 0, len(l.scripts))
	for _, s := range l.scripts {
		out = append(out, doc[s.start:s.end])
	}
	return out
}

// IsUnified reports whether doc carries the unified shell marker.
func IsUnified(doc string) bool {
	return len(scan(doc, Options{}.withDefaults()).markers) > 0
}
