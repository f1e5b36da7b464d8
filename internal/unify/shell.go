package unify

import (
	"errors"
	"sort"
	"strings"
)

// ErrMalformedBase is returned when the base document has no </head>.
var ErrMalformedBase = errors.New("base document has no </head>")

// Shell is the single HTML template shared by every route.
type Shell struct {
	before, after string
	opts          Options
	// Scripts is the union of external script tags, in first-seen order.
	Scripts []string
}

// Template returns the shell with the payload placeholder in place.
func (s *Shell) Template() string {
	return s.before + Placeholder + s.after
}

// Render returns the shell with payload wrapped in the hydration element.
func (s *Shell) Render(payload string) string {
	return s.before + s.opts.payloadTag(payload) + s.after
}

// UnionScripts merges the script tags of every document, dropping exact
// duplicates and keeping first-seen order.
func UnionScripts(docs ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range docs {
		for _, tag := range ExtractScripts(d) {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

// BuildShell turns base into the shared shell: its head keeps everything but
// external scripts and the previous marker, then gains the marker and the
// script union; its body is reduced to the mount point and the placeholder.
func BuildShell(base string, scripts []string, opts Options) (*Shell, error) {
	opts = opts.withDefaults()
	l := scan(base, opts)
	if l.head.start < 0 {
		return nil, ErrMalformedBase
	}

	var strip []span
	for _, s := range append(append([]span{}, l.scripts...), l.markers...) {
		if s.end <= l.head.start {
			strip = append(strip, s)
		}
	}
	sort.Slice(strip, func(i, j int) bool { return strip[i].start < strip[j].start })

	var head strings.Builder
	cur := 0
	for _, s := range strip {
		if s.start < cur {
			continue
		}
		head.WriteString(base[cur:s.start])
		cur = skipSpace(base, s.end, l.head.start)
	}
	head.WriteString(base[cur:l.head.start])

	var b strings.Builder
	b.WriteString(strings.TrimRight(head.String(), " \t\r\n"))
	b.WriteString("\n")
	b.WriteString(markerTag())
	b.WriteString("\n")
	if len(scripts) > 0 {
		b.WriteString(strings.Join(scripts, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(base[l.head.start:l.head.end])

	var after string
	if l.bodyOpen.start >= l.head.end {
		b.WriteString(base[l.head.end:l.bodyOpen.start])
		b.WriteString(base[l.bodyOpen.start:l.bodyOpen.end])
		after = "</body>"
		if l.bodyEnd >= 0 {
			after = base[l.bodyEnd:]
		}
	} else {
		// nothing after </head> survives except the closing </html>
		b.WriteString(defaultBodyOpen)
		after = "</body>"
		if l.htmlEnd.start >= l.head.end {
			after += base[l.htmlEnd.start:l.htmlEnd.end]
		}
	}
	b.WriteString(`<div id="` + opts.MountID + `"></div>` + "\n")

	return &Shell{
		before:  b.String(),
		after:   after,
		opts:    opts,
		Scripts: append([]string(nil), scripts...),
	}, nil
}

func skipSpace(s string, i, limit int) int {
	for i < limit {
		switch s[i] {
		case ' ', '\t', '\r', '\n', '\f':
			i++
		default:
			return i
		}
	}
	return i
}
