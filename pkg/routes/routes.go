// Package routes defines the deployment platform's routing configuration
// document: an ordered sequence of matching directives and phase markers,
// plus the top-level wildcard, image, and override sections.
//
// The document is content-addressable downstream, so serialization must be
// byte-stable: identical input tables marshal to identical bytes.
package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Phase partitions rule evaluation in the downstream routing engine.
type Phase string

const (
	PhaseFilesystem Phase = "filesystem"
	PhaseResource   Phase = "resource"
	PhaseRewrite    Phase = "rewrite"
	PhaseMiss       Phase = "miss"
	PhaseHit        Phase = "hit"
	PhaseError      Phase = "error"
)

// phaseOrder is the only legal marker sequence. Each marker appears at most
// once and positions increase monotonically.
var phaseOrder = []Phase{
	PhaseFilesystem,
	PhaseResource,
	PhaseMiss,
	PhaseRewrite,
	PhaseHit,
	PhaseError,
}

// ConditionType identifies what a has/missing condition inspects.
type ConditionType string

const (
	ConditionHeader ConditionType = "header"
	ConditionCookie ConditionType = "cookie"
	ConditionQuery  ConditionType = "query"
	ConditionHost   ConditionType = "host"
)

// Condition is a has/missing entry on a matching directive. Value empty means
// presence (or absence, for missing) is enough.
type Condition struct {
	Type  ConditionType `json:"type"`
	Key   string        `json:"key,omitempty"`
	Value string        `json:"value,omitempty"`
}

// Locale configures locale-detection redirects: a mapping from locale code to
// redirect target, and the cookie consulted before Accept-Language.
type Locale struct {
	Redirect map[string]string `json:"redirect,omitempty"`
	Cookie   string            `json:"cookie,omitempty"`
}

// Rule is one element of the route table: either a matching directive (Src
// set) or a phase marker (Handle set). The two shapes are mutually exclusive.
type Rule struct {
	// Handle marks the start of an evaluation phase. A marker rule carries no
	// other fields.
	Handle Phase `json:"handle,omitempty"`

	// Src is the source pattern, a regex over the request path.
	Src string `json:"src,omitempty"`

	// Dest is the destination template. Capture references ($1, $name) and
	// $wildcard substitution are resolved by the routing engine.
	Dest string `json:"dest,omitempty"`

	// Headers are response headers set when the rule matches.
	Headers map[string]string `json:"headers,omitempty"`

	// Status short-circuits the response status.
	Status int `json:"status,omitempty"`

	// Has conditions must all hold for the rule to match.
	Has []Condition `json:"has,omitempty"`

	// Missing conditions must all fail for the rule to match.
	Missing []Condition `json:"missing,omitempty"`

	// Locale triggers locale-detection redirects.
	Locale *Locale `json:"locale,omitempty"`

	// MiddlewarePath identifies the middleware function dispatched on match.
	MiddlewarePath string `json:"middlewarePath,omitempty"`

	// Continue keeps evaluating subsequent rules after a match instead of
	// stopping.
	Continue bool `json:"continue,omitempty"`

	// Override makes this match replace, rather than merge with, the effects
	// of earlier matches.
	Override bool `json:"override,omitempty"`

	// Important elevates a header-setting rule above normal priority ordering.
	Important bool `json:"important,omitempty"`

	// Check re-enters filesystem matching at the rewritten destination.
	Check bool `json:"check,omitempty"`

	// CaseSensitive disables the engine's default case folding for Src.
	CaseSensitive bool `json:"caseSensitive,omitempty"`
}

// IsMarker reports whether the rule is a phase marker.
func (r Rule) IsMarker() bool {
	return r.Handle != ""
}

// Wildcard associates a locale value with the external domain serving it.
// The $wildcard placeholder in rule destinations resolves through this table.
type Wildcard struct {
	Domain string `json:"domain"`
	Value  string `json:"value"`
}

// Override replaces the served path and content type for one static output.
type Override struct {
	ContentType string `json:"contentType,omitempty"`
	Path        string `json:"path,omitempty"`
}

// RouteTable is the complete configuration document.
type RouteTable struct {
	Version   int                 `json:"version"`
	Routes    []Rule              `json:"routes"`
	Wildcard  []Wildcard          `json:"wildcard,omitempty"`
	Images    *Images             `json:"images,omitempty"`
	Overrides map[string]Override `json:"overrides,omitempty"`
}

// MarshalIndent is the canonical serialization of the table. Field order is
// fixed by the struct definitions and map keys are emitted sorted, so equal
// tables produce equal bytes.
func (t *RouteTable) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CheckPhaseOrder validates the marker invariant: markers appear at most once
// each and only in filesystem, resource, miss, rewrite, hit, error order.
func CheckPhaseOrder(rules []Rule) error {
	next := 0
	for i, r := range rules {
		if !r.IsMarker() {
			continue
		}
		idx := -1
		for j := next; j < len(phaseOrder); j++ {
			if phaseOrder[j] == r.Handle {
				idx = j
				break
			}
		}
		if idx == -1 {
			for _, p := range phaseOrder {
				if p == r.Handle {
					return fmt.Errorf("phase marker %q at index %d is out of order or duplicated", r.Handle, i)
				}
			}
			return fmt.Errorf("unknown phase marker %q at index %d", r.Handle, i)
		}
		next = idx + 1
	}
	return nil
}
