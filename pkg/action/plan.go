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

package action

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/rancher-sandbox/pkgsolv/internal/pkg"
	"github.com/rancher-sandbox/pkgsolv/internal/solver"
	"github.com/rancher-sandbox/pkgsolv/pkg/eyecandy"
	"github.com/rancher-sandbox/pkgsolv/pkg/virtual"
)

// OutputMode is how a plan is rendered.
type OutputMode string

const (
	Table OutputMode = "table"
	JSON  OutputMode = "json"
	YAML  OutputMode = "yaml"
)

// OutputModes returns the accepted output modes.
func OutputModes() []string {
	return []string{string(Table), string(JSON), string(YAML)}
}

// ParseOutputMode parses the name of an output mode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(s) {
	case Table, JSON, YAML:
		return OutputMode(s), nil
	}
	return "", errors.Errorf("invalid output mode %q, allowed values: %s", s, strings.Join(OutputModes(), ", "))
}

// PlanOperation is one operation of a plan.
type PlanOperation struct {
	Kind     solver.OperationKind `json:"kind"`
	Package  pkg.PackageRecord    `json:"package"`
	Replaced *pkg.PackageRecord   `json:"replaced,omitempty"`
}

// Plan is the outcome of a resolution. It only holds plain data, and stays
// valid once the pool it was computed from is gone.
type Plan struct {
	Operations       []PlanOperation     `json:"operations"`
	Stats            solver.Stats        `json:"stats"`
	PrefixOperations int                 `json:"prefix_operations"`
	Environment      []pkg.PackageRecord `json:"environment"`
}

// newPlan copies a transaction out of its pool. Virtual packages are part
// of the host, not of the environment, and are left out.
func newPlan(t *solver.Transaction) (*Plan, error) {
	ops, err := t.SolvableOperations()
	if err != nil {
		return nil, err
	}
	plan := &Plan{
		Operations:  []PlanOperation{},
		Environment: []pkg.PackageRecord{},
	}
	for _, op := range ops {
		if op.Solvable.Repo().Name() == virtual.RepoName {
			continue
		}
		po := PlanOperation{Kind: op.Kind, Package: *op.Solvable.Record()}
		if op.Replaced != nil {
			po.Replaced = op.Replaced.Record()
		}
		plan.Operations = append(plan.Operations, po)
		plan.Stats.Add(op.Kind)
		if op.Kind != solver.OpRemove {
			plan.Environment = append(plan.Environment, po.Package)
		}
	}
	plan.PrefixOperations = plan.Stats.PrefixOperations()
	sort.SliceStable(plan.Environment, func(i, j int) bool {
		return plan.Environment[i].Name < plan.Environment[j].Name
	})
	return plan, nil
}

// Changes returns the operations that modify the environment.
func (p *Plan) Changes() []PlanOperation {
	changes := []PlanOperation{}
	for _, op := range p.Operations {
		if op.Kind != solver.OpIgnore {
			changes = append(changes, op)
		}
	}
	return changes
}

// DownloadSize is the size of the packages the plan links.
func (p *Plan) DownloadSize() int64 {
	var size int64
	for _, op := range p.Operations {
		switch op.Kind {
		case solver.OpRemove, solver.OpIgnore:
		default:
			size += op.Package.Size
		}
	}
	return size
}

var kindEmoji = map[solver.OperationKind]string{
	solver.OpInstall:   ":package:",
	solver.OpReinstall: ":repeat:",
	solver.OpUpgrade:   ":arrow_up:",
	solver.OpDowngrade: ":arrow_down:",
	solver.OpChange:    ":twisted_rightwards_arrows:",
	solver.OpRemove:    ":fire:",
}

var kindColor = map[solver.OperationKind]func(a ...interface{}) string{
	solver.OpInstall:   color.New(color.FgGreen).SprintFunc(),
	solver.OpReinstall: color.New(color.FgBlue).SprintFunc(),
	solver.OpUpgrade:   color.New(color.FgGreen).SprintFunc(),
	solver.OpDowngrade: color.New(color.FgYellow).SprintFunc(),
	solver.OpChange:    color.New(color.FgYellow).SprintFunc(),
	solver.OpRemove:    color.New(color.FgRed).SprintFunc(),
}

// FormatOutput renders the plan. Tables list the changes only; JSON and YAML
// carry the whole plan.
func (p *Plan) FormatOutput(mode OutputMode, noEmojis bool) (string, error) {
	var sb strings.Builder
	switch mode {
	case Table:
		changes := p.Changes()
		if len(changes) == 0 {
			sb.WriteString(eyecandy.ESPrint(noEmojis, ":sparkles: All requested packages already installed\n"))
			return sb.String(), nil
		}
		table := uitable.New()
		table.MaxColWidth = 60
		table.AddRow("OPERATION", "NAME", "VERSION", "BUILD", "CHANNEL", "SIZE")
		for _, op := range changes {
			ver := op.Package.Version
			if op.Replaced != nil {
				ver = fmt.Sprintf("%s -> %s", op.Replaced.Version, op.Package.Version)
			}
			kind := eyecandy.ESPrintf(noEmojis, kindEmoji[op.Kind]+" %s", kindColor[op.Kind](op.Kind.String()))
			size := ""
			if op.Kind != solver.OpRemove && op.Package.Size > 0 {
				size = units.HumanSize(float64(op.Package.Size))
			}
			table.AddRow(strings.TrimSpace(kind), op.Package.Name, ver, op.Package.Build, op.Package.Channel, size)
		}
		sb.WriteString(table.String())
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf("Prefix operations: %d\n", p.PrefixOperations))
		if size := p.DownloadSize(); size > 0 {
			sb.WriteString(fmt.Sprintf("Total size: %s\n", units.HumanSize(float64(size))))
		}
	case JSON:
		o, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return "", err
		}
		sb.Write(o)
		sb.WriteString("\n")
	case YAML:
		o, err := yaml.Marshal(p)
		if err != nil {
			return "", err
		}
		sb.Write(o)
	default:
		return "", errors.Errorf("unknown output mode %q", mode)
	}
	return sb.String(), nil
}
