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

package pkg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/package-url/packageurl-go"
	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolv/pkg/version"
)

// PackageRecord is the minimum object the solver reasons about: one concrete
// build of a package as published in a channel subdirectory, or as recorded
// in an environment.
// Note that each record is unique. The same name and version with a
// different build string is a different package. E.g:
// python-3.9.0-h0 and python-3.9.0-h1 are different packages.
type PackageRecord struct {
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	Build         string   `json:"build"`
	BuildNumber   uint64   `json:"build_number"`
	Subdir        string   `json:"subdir,omitempty"`
	Depends       []string `json:"depends,omitempty"`    // run requirements, as match specs
	Constrains    []string `json:"constrains,omitempty"` // optional restrictions, as match specs
	TrackFeatures []string `json:"track_features,omitempty"`
	Timestamp     int64    `json:"timestamp,omitempty"` // milliseconds since epoch
	Size          int64    `json:"size,omitempty"`
	MD5           string   `json:"md5,omitempty"`
	SHA256        string   `json:"sha256,omitempty"`
	License       string   `json:"license,omitempty"`
	Noarch        string   `json:"noarch,omitempty"`
	Channel       string   `json:"channel,omitempty"`
	FileName      string   `json:"fn,omitempty"`
	// RequestedSpec is the spec a user installed the package with, empty
	// when it came in as a dependency. Only environment records carry it.
	RequestedSpec string `json:"requested_spec,omitempty"`
}

// Requested reports whether the record was installed on request rather
// than as a dependency.
func (p *PackageRecord) Requested() bool {
	return p.RequestedSpec != "" && p.RequestedSpec != "None"
}

// NewPackageRecord creates a record with the fields the solver needs.
func NewPackageRecord(name, ver, build string, buildNumber uint64, subdir string,
	depends, constrains []string) *PackageRecord {

	return &PackageRecord{
		Name:        name,
		Version:     ver,
		Build:       build,
		BuildNumber: buildNumber,
		Subdir:      subdir,
		Depends:     depends,
		Constrains:  constrains,
	}
}

// NewPackageRecordMock creates a record for the `noarch` subdir, with a build
// string derived from the build number.
// Useful for testing.
func NewPackageRecordMock(name, ver string, buildNumber uint64, depends ...string) *PackageRecord {
	return NewPackageRecord(name, ver, "h"+strconv.FormatUint(buildNumber, 10), buildNumber,
		"noarch", depends, nil)
}

// ParsedVersion parses the version of the record.
func (p *PackageRecord) ParsedVersion() (*version.Version, error) {
	v, err := version.Parse(p.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "package %s", p.GetFingerPrint())
	}
	return v, nil
}

// GetFingerPrint returns a unique key of the package.
func (p *PackageRecord) GetFingerPrint() string {
	return fmt.Sprintf("%s-%s-%s", p.Name, p.Version, p.Build)
}

// GetBaseFingerPrint returns a key of the package minus version and build.
// Packages sharing a base fingerprint can't be installed together.
func (p *PackageRecord) GetBaseFingerPrint() string {
	return p.Name
}

func (p *PackageRecord) String() string {
	return fmt.Sprintf("%s=%s=%s", p.Name, p.Version, p.Build)
}

// PURL returns the package URL of the record.
func (p *PackageRecord) PURL() string {
	qualifiers := map[string]string{}
	if p.Build != "" {
		qualifiers["build"] = p.Build
	}
	if p.Subdir != "" {
		qualifiers["subdir"] = p.Subdir
	}
	if p.Channel != "" {
		qualifiers["channel"] = p.Channel
	}
	purl := packageurl.NewPackageURL(packageurl.TypeConda, "", p.Name, p.Version,
		packageurl.QualifiersFromMap(qualifiers), "")
	return purl.ToString()
}

// JSON serializes package p into JSON, returning a []byte
func (p *PackageRecord) JSON() ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(p)
	return buffer.Bytes(), err
}

// Encode encodes the package to string.
func (p *PackageRecord) Encode() (string, error) {

	encodedPackage, err := p.JSON()
	if err != nil {
		return "", err
	}

	return string(encodedPackage), nil
}
