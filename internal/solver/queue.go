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

package solver

import (
	"strings"
)

// JobFlags combine a job verb, a selection and modifiers.
type JobFlags uint32

// Selections: how the Id of a job is interpreted.
const (
	// JobSolvable selects one solvable by id.
	JobSolvable JobFlags = 0x01
	// JobSolvableName selects every solvable with the interned name.
	JobSolvableName JobFlags = 0x02
	// JobSolvableProvides selects every solvable satisfying the interned
	// dependency.
	JobSolvableProvides JobFlags = 0x03
	// JobSolvableRepo selects every solvable of a repository, by Repo.ID.
	JobSolvableRepo JobFlags = 0x05
	// JobSolvableAll selects every solvable; the Id is ignored.
	JobSolvableAll JobFlags = 0x06

	jobSelectMask JobFlags = 0xff
)

// Verbs: what to do with the selection.
const (
	// JobInstall requires one solvable of the selection.
	JobInstall JobFlags = 0x0100
	// JobErase forbids every solvable of the selection.
	JobErase JobFlags = 0x0200
	// JobUpdate requires one solvable of the selection, preferring the
	// newest over the installed one.
	JobUpdate JobFlags = 0x0300
	// JobLock keeps installed solvables of the selection installed, and the
	// others uninstalled.
	JobLock JobFlags = 0x0400
	// JobFavor prefers the selection over other candidates.
	JobFavor JobFlags = 0x0500
	// JobDisfavor prefers other candidates over the selection.
	JobDisfavor JobFlags = 0x0600

	jobVerbMask JobFlags = 0xff00
)

// Modifiers.
const (
	// JobWeak makes the job droppable: when it takes part in a conflict it
	// is ignored instead of failing the solve.
	JobWeak JobFlags = 0x010000
)

func (f JobFlags) verb() JobFlags      { return f & jobVerbMask }
func (f JobFlags) selection() JobFlags { return f & jobSelectMask }

// Weak reports whether the JobWeak modifier is set.
func (f JobFlags) Weak() bool { return f&JobWeak != 0 }

func (f JobFlags) String() string {
	var parts []string
	switch f.verb() {
	case JobInstall:
		parts = append(parts, "install")
	case JobErase:
		parts = append(parts, "erase")
	case JobUpdate:
		parts = append(parts, "update")
	case JobLock:
		parts = append(parts, "lock")
	case JobFavor:
		parts = append(parts, "favor")
	case JobDisfavor:
		parts = append(parts, "disfavor")
	default:
		parts = append(parts, "noop")
	}
	switch f.selection() {
	case JobSolvable:
		parts = append(parts, "solvable")
	case JobSolvableName:
		parts = append(parts, "name")
	case JobSolvableProvides:
		parts = append(parts, "provides")
	case JobSolvableRepo:
		parts = append(parts, "repo")
	case JobSolvableAll:
		parts = append(parts, "all")
	}
	if f.Weak() {
		parts = append(parts, "weak")
	}
	return strings.Join(parts, "|")
}

// Job is one request to the solver.
type Job struct {
	Id    Id
	Flags JobFlags
}

// Queue is an ordered list of jobs. It is a plain value: it holds Ids but
// owns nothing in the pool. The zero value is an empty queue.
type Queue struct {
	jobs []Job
}

// Push appends a job.
func (q *Queue) Push(id Id, flags JobFlags) {
	q.jobs = append(q.jobs, Job{Id: id, Flags: flags})
}

// Clear removes every job.
func (q *Queue) Clear() { q.jobs = q.jobs[:0] }

// Len returns the number of jobs.
func (q *Queue) Len() int { return len(q.jobs) }

// At returns the job at index i.
func (q *Queue) At(i int) Job { return q.jobs[i] }

// Jobs returns a copy of the jobs, in insertion order.
func (q *Queue) Jobs() []Job {
	return append([]Job(nil), q.jobs...)
}
