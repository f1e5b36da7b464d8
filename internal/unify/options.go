// Package unify rewrites a multi-page static export so that every route is
// served from one shared HTML shell carrying its own hydration payload.
package unify

import "strings"

const (
	// DefaultBase is the route used as the structural template for the shell.
	DefaultBase = "index.html"
	// DefaultPayloadID is the id of the embedded hydration script element.
	DefaultPayloadID = "__NEXT_DATA__"
	// DefaultPayloadType is the content type of the hydration script element.
	DefaultPayloadType = "application/json"
	// DefaultMountID is the id of the client runtime mount point.
	DefaultMountID = "__next"

	// Placeholder marks where a route's payload goes inside the shell.
	Placeholder = "{{__NEXT_DATA__}}"

	// MarkerName is the meta name stamped into every unified shell.
	MarkerName = "portalctl-unified"

	defaultBodyOpen = `<body class="antialiased">`
)

// Options controls which elements are recognised and how the shell is built.
// Zero values fall back to the defaults above.
type Options struct {
	Base        string
	PayloadID   string
	PayloadType string
	MountID     string
	// Exclude holds doublestar patterns matched against route paths.
	Exclude []string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Base) == "" {
		o.Base = DefaultBase
	}
	if strings.TrimSpace(o.PayloadID) == "" {
		o.PayloadID = DefaultPayloadID
	}
	if strings.TrimSpace(o.PayloadType) == "" {
		o.PayloadType = DefaultPayloadType
	}
	if strings.TrimSpace(o.MountID) == "" {
		o.MountID = DefaultMountID
	}
	return o
}

// payloadTag wraps a payload in the canonical hydration element.
func (o Options) payloadTag(payload string) string {
	return `<script id="` + o.PayloadID + `" type="` + o.PayloadType + `">` + payload + `</script>`
}

func markerTag() string {
	return `<meta name="` + MarkerName + `" content="1">`
}
