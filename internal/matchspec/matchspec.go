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
Package matchspec parses dependency expressions, also called match specs.

A match spec selects packages by name, version, build string, build number,
channel and subdir:

	numpy
	numpy 1.24.*
	numpy >=1.20,<2 py39_0
	numpy=1.24=py39_0
	numpy>=1.20,<2
	conda-forge/linux-64::numpy[version='>=1.20', build_number='>=1']

They are used both as the requirements declared by a package, and as the
requests given by the user.
*/
package matchspec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/pkg/version"
)

// ParseError is returned for malformed match specs and version predicates.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid match spec %q: %s", e.Input, e.Reason)
}

type reasonError string

func (e reasonError) Error() string { return string(e) }

func errorf(format string, args ...interface{}) error {
	return reasonError(fmt.Sprintf(format, args...))
}

// MatchSpec is a parsed dependency expression. A nil predicate matches
// everything.
type MatchSpec struct {
	Name        string
	Version     *VersionSpec
	Build       string
	BuildNumber *NumberSpec
	Channel     string
	Subdir      string

	nameGlob  glob.Glob
	buildGlob glob.Glob
}

// NumberSpec is a predicate over build numbers, e.g. `>=2`.
type NumberSpec struct {
	op    operator
	value uint64
}

// Matches reports whether n satisfies the predicate.
func (ns *NumberSpec) Matches(n uint64) bool {
	switch ns.op {
	case opEqual:
		return n == ns.value
	case opNotEqual:
		return n != ns.value
	case opGreater:
		return n > ns.value
	case opGreaterEqual:
		return n >= ns.value
	case opLess:
		return n < ns.value
	case opLessEqual:
		return n <= ns.value
	}
	return true
}

func (ns *NumberSpec) String() string {
	prefix := ""
	for _, o := range operators {
		if o.op == ns.op && ns.op != opEqual {
			prefix = o.text
			break
		}
	}
	return prefix + strconv.FormatUint(ns.value, 10)
}

func parseNumberSpec(s string) (*NumberSpec, error) {
	s = strings.TrimSpace(s)
	ns := &NumberSpec{op: opEqual}
	for _, o := range operators {
		if strings.HasPrefix(s, o.text) {
			if o.op == opCompatible || o.op == opStartsWith {
				return nil, errorf("operator %q not supported for build numbers", o.text)
			}
			ns.op = o.op
			s = strings.TrimSpace(s[len(o.text):])
			break
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errorf("invalid build number %q", s)
	}
	ns.value = n
	return ns, nil
}

var knownSubdirs = map[string]bool{
	"noarch":            true,
	"linux-32":          true,
	"linux-64":          true,
	"linux-aarch64":     true,
	"linux-armv6l":      true,
	"linux-armv7l":      true,
	"linux-ppc64":       true,
	"linux-ppc64le":     true,
	"linux-riscv64":     true,
	"linux-s390x":       true,
	"osx-64":            true,
	"osx-arm64":         true,
	"win-32":            true,
	"win-64":            true,
	"win-arm64":         true,
	"emscripten-wasm32": true,
	"wasi-wasm32":       true,
	"zos-z":             true,
}

// whitespace surrounding `,` and `|`, or following an operator
var operatorSpace = regexp.MustCompile(`\s*([,|])\s*|([<>=!~])\s+`)

// Parse parses a match spec.
func Parse(input string) (*MatchSpec, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, &ParseError{Input: input, Reason: "empty match spec"}
	}
	fail := func(err error) (*MatchSpec, error) {
		if pe, ok := err.(*ParseError); ok {
			return nil, &ParseError{Input: input, Reason: pe.Reason}
		}
		return nil, &ParseError{Input: input, Reason: err.Error()}
	}

	ms := &MatchSpec{}

	var brackets map[string]string
	if strings.HasSuffix(s, "]") {
		open := strings.IndexByte(s, '[')
		if open < 0 {
			return fail(errorf("unbalanced ']'"))
		}
		var err error
		brackets, err = parseBrackets(s[open+1 : len(s)-1])
		if err != nil {
			return fail(err)
		}
		s = strings.TrimSpace(s[:open])
	}

	if i := strings.Index(s, "::"); i >= 0 {
		ms.Channel, ms.Subdir = splitChannel(s[:i])
		s = strings.TrimSpace(s[i+2:])
	}

	nameEnd := strings.IndexAny(s, " \t=<>!~")
	if nameEnd < 0 {
		nameEnd = len(s)
	}
	ms.Name = strings.ToLower(s[:nameEnd])
	rest := strings.TrimSpace(s[nameEnd:])
	if ms.Name == "" {
		return fail(errorf("missing package name"))
	}

	var versionText, buildText string
	switch {
	case rest == "":
	case strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "=="):
		// name=version[=build]
		parts := strings.SplitN(rest[1:], "=", 2)
		versionText = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			buildText = strings.TrimSpace(parts[1])
		} else if versionText != "" && !strings.HasSuffix(versionText, "*") {
			versionText = "=" + versionText
		}
	default:
		fields := strings.Fields(operatorSpace.ReplaceAllString(rest, "$1$2"))
		switch len(fields) {
		case 1:
			versionText = fields[0]
		case 2:
			versionText, buildText = fields[0], fields[1]
		default:
			return fail(errorf("unexpected text %q", strings.Join(fields[2:], " ")))
		}
	}

	for _, key := range bracketKeys(brackets) {
		value := brackets[key]
		switch key {
		case "version":
			versionText = value
		case "build":
			buildText = value
		case "build_number":
			ns, err := parseNumberSpec(value)
			if err != nil {
				return fail(err)
			}
			ms.BuildNumber = ns
		case "channel":
			ms.Channel, ms.Subdir = splitChannel(value)
		case "subdir":
			ms.Subdir = value
		}
	}

	if versionText != "" {
		vs, err := ParseVersionSpec(versionText)
		if err != nil {
			return fail(err)
		}
		if !vs.IsAny() {
			ms.Version = vs
		}
	}
	if buildText != "" && buildText != "*" {
		ms.Build = buildText
		if strings.ContainsAny(buildText, "*?[") {
			g, err := glob.Compile(buildText)
			if err != nil {
				return fail(errorf("invalid build pattern %q", buildText))
			}
			ms.buildGlob = g
		}
	}
	if strings.ContainsAny(ms.Name, "*?[") {
		g, err := glob.Compile(ms.Name)
		if err != nil {
			return fail(errorf("invalid name pattern %q", ms.Name))
		}
		ms.nameGlob = g
	}

	return ms, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) *MatchSpec {
	ms, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ms
}

func splitChannel(s string) (channel, subdir string) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '/'); i >= 0 && knownSubdirs[s[i+1:]] {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func parseBrackets(s string) (map[string]string, error) {
	out := map[string]string{}
	var (
		key, cur strings.Builder
		quote    byte
		inValue  bool
	)
	flush := func() error {
		k := strings.TrimSpace(key.String())
		v := strings.TrimSpace(cur.String())
		key.Reset()
		cur.Reset()
		inValue = false
		if k == "" && v == "" {
			return nil
		}
		if k == "" {
			return errorf("bracket entry %q has no key", v)
		}
		out[strings.ToLower(k)] = v
		return nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case inValue && (c == '\'' || c == '"'):
			quote = c
		case c == ',':
			if err := flush(); err != nil {
				return nil, err
			}
		case c == '=' && !inValue:
			inValue = true
		case inValue:
			cur.WriteByte(c)
		default:
			key.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, errorf("unterminated quote in brackets")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// bracketKeys returns the known keys present in m, in the order they are
// applied. Other keys (md5, url, license, ...) don't take part in solving.
func bracketKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for _, k := range []string{"version", "build", "build_number", "channel", "subdir"} {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// MatchesName reports whether name satisfies the name part of the spec.
func (ms *MatchSpec) MatchesName(name string) bool {
	if ms.nameGlob != nil {
		return ms.nameGlob.Match(name)
	}
	return ms.Name == name
}

// HasExactName reports whether the spec selects a single package name.
func (ms *MatchSpec) HasExactName() bool {
	return ms.nameGlob == nil
}

// Matches reports whether the record satisfies the spec. Records with an
// unparseable version never match a version predicate.
func (ms *MatchSpec) Matches(rec *pkg.PackageRecord) bool {
	var v *version.Version
	if ms.Version != nil {
		var err error
		v, err = version.Parse(rec.Version)
		if err != nil {
			return false
		}
	}
	return ms.MatchesParsed(rec, v)
}

// MatchesParsed is like Matches with the version of the record already
// parsed. v may be nil when the spec has no version predicate.
func (ms *MatchSpec) MatchesParsed(rec *pkg.PackageRecord, v *version.Version) bool {
	if !ms.MatchesName(rec.Name) {
		return false
	}
	if ms.Version != nil && (v == nil || !ms.Version.Matches(v)) {
		return false
	}
	if ms.Build != "" {
		if ms.buildGlob != nil {
			if !ms.buildGlob.Match(rec.Build) {
				return false
			}
		} else if ms.Build != rec.Build {
			return false
		}
	}
	if ms.BuildNumber != nil && !ms.BuildNumber.Matches(rec.BuildNumber) {
		return false
	}
	if ms.Subdir != "" && ms.Subdir != rec.Subdir {
		return false
	}
	if ms.Channel != "" && !matchesChannel(ms.Channel, rec.Channel) {
		return false
	}
	return true
}

func matchesChannel(want, have string) bool {
	have = strings.TrimSuffix(have, "/")
	return want == have || strings.HasSuffix(have, "/"+want)
}

// String renders the spec in canonical form. Two specs with the same
// canonical form select the same packages.
func (ms *MatchSpec) String() string {
	var sb strings.Builder
	if ms.Channel != "" {
		sb.WriteString(ms.Channel)
		if ms.Subdir != "" {
			sb.WriteByte('/')
			sb.WriteString(ms.Subdir)
		}
		sb.WriteString("::")
	}
	sb.WriteString(ms.Name)
	switch {
	case ms.Version != nil:
		sb.WriteByte(' ')
		sb.WriteString(ms.Version.String())
		if ms.Build != "" {
			sb.WriteByte(' ')
			sb.WriteString(ms.Build)
		}
	case ms.Build != "":
		sb.WriteString(" * ")
		sb.WriteString(ms.Build)
	}
	var extra []string
	if ms.BuildNumber != nil {
		extra = append(extra, "build_number="+ms.BuildNumber.String())
	}
	if ms.Channel == "" && ms.Subdir != "" {
		extra = append(extra, "subdir="+ms.Subdir)
	}
	if len(extra) > 0 {
		sb.WriteByte('[')
		sb.WriteString(strings.Join(extra, ","))
		sb.WriteByte(']')
	}
	return sb.String()
}
