/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package version parses and orders package versions as published in package
channels.

A version is made of an optional epoch (`1!`), a list of components separated
by dots (underscores and dashes are accepted as separators too), and an
optional local part after a `+`. Each component is split into alternating
numeric and alphabetic parts: `1.2a3` has the components `[1]` and `[2 a 3]`.
A component that starts with letters gets an implicit leading 0.

Parts order as:

	"*" < "dev" < "_" < other strings < numbers < "post"

Missing components and parts are padded with 0, which makes `1.0` and
`1.0.0` equal, and `1.1a1` older than `1.1`.
*/
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is returned when a version string cannot be parsed.
type ParseError struct {
	Version string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Version, e.Reason)
}

type part struct {
	isNum bool
	num   uint64
	str   string
}

type component struct {
	parts []part
	// implicit is set when a leading 0 was inserted before an alphabetic part
	implicit bool
}

// Version is a parsed package version. The zero value is not valid, use
// Parse.
type Version struct {
	source     string
	epoch      uint64
	hasEpoch   bool
	components []component
	local      []component
}

// Parse parses s into a Version.
func Parse(s string) (*Version, error) {
	source := strings.TrimSpace(s)
	if source == "" {
		return nil, &ParseError{Version: s, Reason: "empty string"}
	}
	norm := strings.ToLower(source)
	for _, r := range norm {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z':
		case r == '.', r == '_', r == '-', r == '+', r == '!', r == '*':
		default:
			return nil, &ParseError{Version: s, Reason: fmt.Sprintf("unexpected character %q", r)}
		}
	}

	v := &Version{source: source}

	if i := strings.IndexByte(norm, '!'); i >= 0 {
		epoch, err := strconv.ParseUint(norm[:i], 10, 64)
		if err != nil {
			return nil, &ParseError{Version: s, Reason: "epoch must be an integer"}
		}
		v.epoch = epoch
		v.hasEpoch = true
		norm = norm[i+1:]
		if strings.IndexByte(norm, '!') >= 0 {
			return nil, &ParseError{Version: s, Reason: "duplicated epoch separator '!'"}
		}
	}

	main := norm
	if i := strings.IndexByte(norm, '+'); i >= 0 {
		main = norm[:i]
		localStr := norm[i+1:]
		if localStr == "" {
			return nil, &ParseError{Version: s, Reason: "empty local version"}
		}
		if strings.IndexByte(localStr, '+') >= 0 {
			return nil, &ParseError{Version: s, Reason: "duplicated local version separator '+'"}
		}
		local, err := parseComponents(localStr)
		if err != nil {
			return nil, &ParseError{Version: s, Reason: err.Error()}
		}
		v.local = local
	}
	if main == "" {
		return nil, &ParseError{Version: s, Reason: "missing version number"}
	}

	components, err := parseComponents(main)
	if err != nil {
		return nil, &ParseError{Version: s, Reason: err.Error()}
	}
	v.components = components
	return v, nil
}

// MustParse is like Parse but panics if the version cannot be parsed.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseComponents(s string) ([]component, error) {
	if strings.Contains(s, "-") && !strings.Contains(s, "_") {
		s = strings.ReplaceAll(s, "-", "_")
	}
	trailing := false
	if strings.HasSuffix(s, "_") {
		trailing = true
		s = strings.TrimSuffix(s, "_")
	}
	s = strings.ReplaceAll(s, "_", ".")

	var components []component
	for _, raw := range strings.Split(s, ".") {
		if raw == "" {
			return nil, fmt.Errorf("empty version component")
		}
		c, err := parseComponent(raw)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	if trailing {
		last := &components[len(components)-1]
		last.parts = append(last.parts, part{str: "_"})
	}
	return components, nil
}

func parseComponent(raw string) (component, error) {
	var c component
	i := 0
	for i < len(raw) {
		j := i
		switch ch := raw[i]; {
		case ch >= '0' && ch <= '9':
			for j < len(raw) && raw[j] >= '0' && raw[j] <= '9' {
				j++
			}
			n, err := strconv.ParseUint(raw[i:j], 10, 64)
			if err != nil {
				return c, fmt.Errorf("number %q out of range", raw[i:j])
			}
			c.parts = append(c.parts, part{isNum: true, num: n})
		case ch == '*':
			j++
			c.parts = append(c.parts, part{str: "*"})
		default:
			for j < len(raw) && raw[j] >= 'a' && raw[j] <= 'z' {
				j++
			}
			if j == i {
				return c, fmt.Errorf("unexpected character %q", ch)
			}
			c.parts = append(c.parts, part{str: raw[i:j]})
		}
		i = j
	}
	if len(c.parts) > 0 && !c.parts[0].isNum {
		c.parts = append([]part{{isNum: true}}, c.parts...)
		c.implicit = true
	}
	return c, nil
}

func (p part) rank() int {
	if p.isNum {
		return 4
	}
	switch p.str {
	case "*":
		return 0
	case "dev":
		return 1
	case "_":
		return 2
	case "post":
		return 5
	}
	return 3
}

func comparePart(a, b part) int {
	ra, rb := a.rank(), b.rank()
	if ra != rb {
		return compareInts(ra, rb)
	}
	switch {
	case a.isNum:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case ra == 3:
		return strings.Compare(a.str, b.str)
	}
	return 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

var zeroPart = part{isNum: true}

func compareComponent(a, b component) int {
	n := len(a.parts)
	if len(b.parts) > n {
		n = len(b.parts)
	}
	for i := 0; i < n; i++ {
		pa, pb := zeroPart, zeroPart
		if i < len(a.parts) {
			pa = a.parts[i]
		}
		if i < len(b.parts) {
			pb = b.parts[i]
		}
		if c := comparePart(pa, pb); c != 0 {
			return c
		}
	}
	return 0
}

var zeroComponent = component{parts: []part{zeroPart}}

func compareComponents(a, b []component) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := zeroComponent, zeroComponent
		if i < len(a) {
			ca = a[i]
		}
		if i < len(b) {
			cb = b[i]
		}
		if c := compareComponent(ca, cb); c != 0 {
			return c
		}
	}
	return 0
}

// Compare returns -1, 0 or 1 when v is older, equal or newer than o.
func (v *Version) Compare(o *Version) int {
	switch {
	case v.epoch < o.epoch:
		return -1
	case v.epoch > o.epoch:
		return 1
	}
	if c := compareComponents(v.components, o.components); c != 0 {
		return c
	}
	return compareComponents(v.local, o.local)
}

// Equal reports whether v and o denote the same version.
func (v *Version) Equal(o *Version) bool { return v.Compare(o) == 0 }

// Less reports whether v orders before o.
func (v *Version) Less(o *Version) bool { return v.Compare(o) < 0 }

// StartsWith reports whether v lies in the version range spelled as
// `prefix.*`: every component of prefix but the last must be equal, and the
// last component of prefix must be a prefix of the matching component of v.
func (v *Version) StartsWith(prefix *Version) bool {
	if v.epoch != prefix.epoch {
		return false
	}
	if !componentsStartWith(v.components, prefix.components) {
		return false
	}
	if len(prefix.local) == 0 {
		return true
	}
	return componentsStartWith(v.local, prefix.local)
}

func componentsStartWith(have, prefix []component) bool {
	for i, pc := range prefix {
		hc := zeroComponent
		if i < len(have) {
			hc = have[i]
		}
		if i < len(prefix)-1 {
			if compareComponent(hc, pc) != 0 {
				return false
			}
			continue
		}
		for j, pp := range pc.parts {
			hp := zeroPart
			if j < len(hc.parts) {
				hp = hc.parts[j]
			}
			if comparePart(hp, pp) != 0 {
				return false
			}
		}
	}
	return true
}

// CompatibleWith reports whether v can replace o without a breaking change:
// v is not older than o and both share the same epoch and major component.
func (v *Version) CompatibleWith(o *Version) bool {
	if v.epoch != o.epoch || v.Compare(o) < 0 {
		return false
	}
	return compareComponent(v.componentAt(0), o.componentAt(0)) == 0
}

func (v *Version) componentAt(i int) component {
	if i < len(v.components) {
		return v.components[i]
	}
	return zeroComponent
}

// SegmentCount returns the number of components, not counting the epoch or
// the local part.
func (v *Version) SegmentCount() int { return len(v.components) }

// AsMajorMinor returns the first two components when both are plain numbers.
func (v *Version) AsMajorMinor() (major, minor uint64, ok bool) {
	if len(v.components) < 2 {
		return 0, 0, false
	}
	first, second := v.components[0], v.components[1]
	if len(first.parts) != 1 || len(second.parts) != 1 || !first.parts[0].isNum || !second.parts[0].isNum {
		return 0, 0, false
	}
	return first.parts[0].num, second.parts[0].num, true
}

// IsDev reports whether any component contains a dev marker. Dev versions
// sort before their release.
func (v *Version) IsDev() bool {
	for _, c := range v.components {
		for _, p := range c.parts {
			if !p.isNum && p.str == "dev" {
				return true
			}
		}
	}
	return false
}

// HasLocal reports whether the version carries a `+local` part.
func (v *Version) HasLocal() bool { return len(v.local) > 0 }

// StripLocal returns a copy of v without its local part.
func (v *Version) StripLocal() *Version {
	out := v.clone()
	out.local = nil
	out.source = ""
	return out
}

// Bump returns a new version where the last numeric part has been
// incremented.
func (v *Version) Bump() *Version {
	out := v.clone()
	out.source = ""
	for i := len(out.components) - 1; i >= 0; i-- {
		parts := out.components[i].parts
		for j := len(parts) - 1; j >= 0; j-- {
			if parts[j].isNum {
				parts[j].num++
				if j == 0 && out.components[i].implicit {
					out.components[i].implicit = false
				}
				return out
			}
		}
	}
	return out
}

func (v *Version) clone() *Version {
	out := *v
	out.components = cloneComponents(v.components)
	out.local = cloneComponents(v.local)
	return &out
}

func cloneComponents(in []component) []component {
	if in == nil {
		return nil
	}
	out := make([]component, len(in))
	for i, c := range in {
		out[i] = component{parts: append([]part(nil), c.parts...), implicit: c.implicit}
	}
	return out
}

// String returns the version as it was written, or a canonical rendering for
// derived versions.
func (v *Version) String() string {
	if v.source != "" {
		return v.source
	}
	var sb strings.Builder
	if v.hasEpoch {
		sb.WriteString(strconv.FormatUint(v.epoch, 10))
		sb.WriteByte('!')
	}
	writeComponents(&sb, v.components)
	if len(v.local) > 0 {
		sb.WriteByte('+')
		writeComponents(&sb, v.local)
	}
	return sb.String()
}

func writeComponents(sb *strings.Builder, components []component) {
	for i, c := range components {
		if i > 0 {
			sb.WriteByte('.')
		}
		for j, p := range c.parts {
			if j == 0 && c.implicit {
				continue
			}
			if p.isNum {
				sb.WriteString(strconv.FormatUint(p.num, 10))
			} else {
				sb.WriteString(p.str)
			}
		}
	}
}
