package unify

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractScripts_Verbatim(t *testing.T) {
	doc := `<html><head>
<script src="/_next/static/chunks/main.js" defer="" nomodule></script>
<SCRIPT SRC='/legacy.js'></SCRIPT>
<script>window.inline = 1</script>
<!-- <script src="/commented.js"></script> -->
<script src="/guarded.js">if (a < b && c > d) { x("</div>") }</script>
</head><body><script id="__NEXT_DATA__" type="application/json">{}</script></body></html>`

	got := ExtractScripts(doc)
	want := []string{
		`<script src="/_next/static/chunks/main.js" defer="" nomodule></script>`,
		`<SCRIPT SRC='/legacy.js'></SCRIPT>`,
		`<script src="/guarded.js">if (a < b && c > d) { x("</div>") }</script>`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractScripts_None(t *testing.T) {
	if got := ExtractScripts("<p>no scripts here</p>"); len(got) != 0 {
		t.Fatalf("expected no scripts, got %v", got)
	}
	if got := ExtractScripts(""); len(got) != 0 {
		t.Fatalf("expected no scripts for empty doc, got %v", got)
	}
}

func TestExtractPayload(t *testing.T) {
	doc := `<body><script type="application/json" id="__NEXT_DATA__">
  {"props":{"page":"home"}}
</script></body>`
	got, ok := ExtractPayload(doc, Options{})
	if !ok {
		t.Fatalf("payload not found")
	}
	if got != `{"props":{"page":"home"}}` {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestExtractPayload_RequiresIDAndType(t *testing.T) {
	cases := map[string]string{
		"wrong type": `<script id="__NEXT_DATA__" type="text/javascript">{}</script>`,
		"wrong id":   `<script id="other" type="application/json">{}</script>`,
		"absent":     `<html><body><div id="__next"></div></body></html>`,
		"empty":      `<script id="__NEXT_DATA__" type="application/json"></script>`,
		"blank":      `<script id="__NEXT_DATA__" type="application/json">` + "  \n\t</script>",
	}
	for name, doc := range cases {
		if _, ok := ExtractPayload(doc, Options{}); ok {
			t.Fatalf("%s: expected no payload", name)
		}
	}
}

func TestExtractPayload_CustomID(t *testing.T) {
	doc := `<script id="__STATE__" type="application/ld+json">{"x":1}</script>`
	got, ok := ExtractPayload(doc, Options{PayloadID: "__STATE__", PayloadType: "application/ld+json"})
	if !ok || got != `{"x":1}` {
		t.Fatalf("unexpected payload %q ok=%v", got, ok)
	}
}

func TestBuildShell(t *testing.T) {
	base := `<!DOCTYPE html><html><head><meta charSet="utf-8"/><title>Portal</title>
<script src="/a.js"></script>
<link rel="stylesheet" href="/app.css"/>
<script src="/b.js"></script>
</head><body class="antialiased dark"><div id="__next"><h1>Home</h1></div><script src="/c.js"></script></body></html>`
	scripts := []string{`<script src="/a.js"></script>`, `<script src="/b.js"></script>`, `<script src="/z.js"></script>`}

	sh, err := BuildShell(base, scripts, Options{})
	if err != nil {
		t.Fatalf("BuildShell: %v", err)
	}
	tpl := sh.Template()
	if n := strings.Count(tpl, Placeholder); n != 1 {
		t.Fatalf("expected one placeholder, got %d in:\n%s", n, tpl)
	}
	if strings.Contains(tpl, "<h1>Home</h1>") {
		t.Fatalf("body content should be discarded:\n%s", tpl)
	}
	if !strings.Contains(tpl, `<link rel="stylesheet" href="/app.css"/>`) {
		t.Fatalf("non-script head content should be kept:\n%s", tpl)
	}
	wantHeadTail := markerTag() + "\n" + strings.Join(scripts, "\n") + "\n</head>"
	if !strings.Contains(tpl, wantHeadTail) {
		t.Fatalf("scripts not appended before </head>:\n%s", tpl)
	}
	wantBody := `<body class="antialiased dark"><div id="__next"></div>` + "\n" + Placeholder + "</body></html>"
	if !strings.HasSuffix(tpl, wantBody) {
		t.Fatalf("unexpected body:\n%s", tpl)
	}
	if got := ExtractScripts(tpl); len(got) != 3 {
		t.Fatalf("expected exactly the union in the shell, got %v", got)
	}

	out := sh.Render(`{"page":"home"}`)
	if p, ok := ExtractPayload(out, Options{}); !ok || p != `{"page":"home"}` {
		t.Fatalf("render lost payload: %q ok=%v", p, ok)
	}
}

func TestBuildShell_NoBody(t *testing.T) {
	sh, err := BuildShell(`<html><head><title>x</title></head></html>`, nil, Options{MountID: "root"})
	if err != nil {
		t.Fatalf("BuildShell: %v", err)
	}
	tpl := sh.Template()
	if !strings.HasSuffix(tpl, defaultBodyOpen+`<div id="root"></div>`+"\n"+Placeholder+"</body></html>") {
		t.Fatalf("expected default body, got:\n%s", tpl)
	}
}

func TestBuildShell_NoBodyDropsTrailingContent(t *testing.T) {
	base := `<html><head><title>x</title></head><div>stray</div><p>old route</p></html>` + "\n"
	sh, err := BuildShell(base, nil, Options{})
	if err != nil {
		t.Fatalf("BuildShell: %v", err)
	}
	tpl := sh.Template()
	if strings.Contains(tpl, "stray") || strings.Contains(tpl, "old route") {
		t.Fatalf("post-head content leaked into shell:\n%s", tpl)
	}
	if !strings.HasSuffix(tpl, Placeholder+"</body></html>") {
		t.Fatalf("unexpected tail:\n%s", tpl)
	}

	noHTML, err := BuildShell(`<head></head><div>stray</div>`, nil, Options{})
	if err != nil {
		t.Fatalf("BuildShell: %v", err)
	}
	if got := noHTML.Template(); !strings.HasSuffix(got, Placeholder+"</body>") || strings.Contains(got, "stray") {
		t.Fatalf("unexpected shell without </html>:\n%s", got)
	}
}

func TestBuildShell_Malformed(t *testing.T) {
	_, err := BuildShell("<p>fragment</p>", nil, Options{})
	if !errors.Is(err, ErrMalformedBase) {
		t.Fatalf("expected ErrMalformedBase, got %v", err)
	}
}

func TestUnionScripts_Dedup(t *testing.T) {
	a := `<head><script src="/a.js"></script><script src="/b.js"></script></head>`
	b := `<head><script src="/b.js"></script><script src="/c.js"></script></head>`
	c := `<head><script src="/b.js" async></script></head>`
	got := UnionScripts(a, b, c)
	want := []string{
		`<script src="/a.js"></script>`,
		`<script src="/b.js"></script>`,
		`<script src="/c.js"></script>`,
		`<script src="/b.js" async></script>`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("union mismatch (-want +got):\n%s", diff)
	}
}

func TestIsUnified(t *testing.T) {
	if IsUnified(`<html><head></head></html>`) {
		t.Fatalf("plain document reported as unified")
	}
	sh, err := BuildShell(`<html><head></head><body></body></html>`, nil, Options{})
	if err != nil {
		t.Fatalf("BuildShell: %v", err)
	}
	if !IsUnified(sh.Render("{}")) {
		t.Fatalf("rendered shell should carry the marker")
	}
}
