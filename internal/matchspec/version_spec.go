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

package matchspec

import (
	"strings"

	"github.com/rancher-sandbox/pkgsolv/pkg/version"
)

type operator int

const (
	opAny operator = iota
	opEqual
	opNotEqual
	opGreater
	opGreaterEqual
	opLess
	opLessEqual
	opStartsWith
	opNotStartsWith
	opCompatible
)

type constraint struct {
	op operator
	v  *version.Version
	// prefix is the version minus its last component, for ~=
	prefix *version.Version
}

func (c constraint) matches(v *version.Version) bool {
	switch c.op {
	case opAny:
		return true
	case opEqual:
		return v.Equal(c.v)
	case opNotEqual:
		return !v.Equal(c.v)
	case opGreater:
		return v.Compare(c.v) > 0
	case opGreaterEqual:
		return v.Compare(c.v) >= 0
	case opLess:
		return v.Compare(c.v) < 0
	case opLessEqual:
		return v.Compare(c.v) <= 0
	case opStartsWith:
		return v.StartsWith(c.v)
	case opNotStartsWith:
		return !v.StartsWith(c.v)
	case opCompatible:
		return v.Compare(c.v) >= 0 && v.StartsWith(c.prefix)
	}
	return false
}

func (c constraint) String() string {
	switch c.op {
	case opAny:
		return "*"
	case opEqual:
		return "==" + c.v.String()
	case opNotEqual:
		return "!=" + c.v.String()
	case opGreater:
		return ">" + c.v.String()
	case opGreaterEqual:
		return ">=" + c.v.String()
	case opLess:
		return "<" + c.v.String()
	case opLessEqual:
		return "<=" + c.v.String()
	case opStartsWith:
		return c.v.String() + ".*"
	case opNotStartsWith:
		return "!=" + c.v.String() + ".*"
	case opCompatible:
		return "~=" + c.v.String()
	}
	return ""
}

// VersionSpec is a version predicate: a disjunction (`|`) of conjunctions
// (`,`) of version constraints.
type VersionSpec struct {
	alternatives [][]constraint
}

// ParseVersionSpec parses a version predicate such as `>=1.20,<2|3.0.*`.
func ParseVersionSpec(s string) (*VersionSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &ParseError{Input: s, Reason: "empty version spec"}
	}
	vs := &VersionSpec{}
	for _, alt := range strings.Split(s, "|") {
		var terms []constraint
		for _, term := range strings.Split(alt, ",") {
			c, err := parseConstraint(strings.TrimSpace(term))
			if err != nil {
				return nil, &ParseError{Input: s, Reason: err.Error()}
			}
			terms = append(terms, c)
		}
		vs.alternatives = append(vs.alternatives, terms)
	}
	return vs, nil
}

var operators = []struct {
	text string
	op   operator
}{
	// two-character operators first
	{"==", opEqual},
	{"!=", opNotEqual},
	{">=", opGreaterEqual},
	{"<=", opLessEqual},
	{"~=", opCompatible},
	{">", opGreater},
	{"<", opLess},
	{"=", opStartsWith},
}

func parseConstraint(term string) (constraint, error) {
	if term == "" {
		return constraint{}, errorf("empty version constraint")
	}
	if term == "*" || term == "*.*" {
		return constraint{op: opAny}, nil
	}

	op := opEqual
	explicit := false
	for _, candidate := range operators {
		if strings.HasPrefix(term, candidate.text) {
			op = candidate.op
			explicit = true
			term = strings.TrimSpace(term[len(candidate.text):])
			break
		}
	}

	glob := false
	switch {
	case strings.HasSuffix(term, ".*"):
		glob = true
		term = strings.TrimSuffix(term, ".*")
	case strings.HasSuffix(term, "*"):
		glob = true
		term = strings.TrimSuffix(term, "*")
	}
	if term == "" {
		return constraint{}, errorf("missing version after operator")
	}
	if strings.Contains(term, "*") {
		return constraint{}, errorf("wildcard %q is only allowed at the end", term)
	}

	if glob {
		switch op {
		case opEqual, opStartsWith:
			op = opStartsWith
		case opNotEqual:
			op = opNotStartsWith
		case opCompatible:
			return constraint{}, errorf("~= does not accept a wildcard")
		}
		// >=1.2.* and friends are read as >=1.2
	} else if !explicit {
		op = opEqual
	}

	v, err := version.Parse(term)
	if err != nil {
		return constraint{}, err
	}
	c := constraint{op: op, v: v}
	if op == opCompatible {
		i := strings.LastIndexAny(term, "._-")
		if i <= 0 {
			return constraint{}, errorf("~=%s needs at least two version components", term)
		}
		prefix, err := version.Parse(term[:i])
		if err != nil {
			return constraint{}, err
		}
		c.prefix = prefix
	}
	return c, nil
}

// Matches reports whether v satisfies the predicate.
func (vs *VersionSpec) Matches(v *version.Version) bool {
	for _, alt := range vs.alternatives {
		ok := true
		for _, c := range alt {
			if !c.matches(v) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// IsAny reports whether every version satisfies the predicate.
func (vs *VersionSpec) IsAny() bool {
	for _, alt := range vs.alternatives {
		if len(alt) == 1 && alt[0].op == opAny {
			return true
		}
	}
	return false
}

func (vs *VersionSpec) String() string {
	alts := make([]string, 0, len(vs.alternatives))
	for _, alt := range vs.alternatives {
		terms := make([]string, 0, len(alt))
		for _, c := range alt {
			terms = append(terms, c.String())
		}
		alts = append(alts, strings.Join(terms, ","))
	}
	return strings.Join(alts, "|")
}
