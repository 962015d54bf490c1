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
Package solver resolves package requests into an ordered list of operations:
install, remove, upgrade, downgrade, change, reinstall, or ignore.

A package is a record with a unique key (name, version, build string), its
dependencies and its constraints, as published in a channel or as recorded in
an environment.

To perform a package operation, for example, "install numpy", we:

 1. Build a Pool of all packages in the world, which contains:
    - One Repo per channel, with the packages it publishes.
    - One Repo with the packages already installed, marked with
    Pool.SetInstalled.
    Names, versions and dependency expressions are interned into Ids, and each
    record becomes a Solvable. Pool.CreateWhatProvides then indexes which
    solvables satisfy which dependency. The index must be rebuilt after any
    repository change; creating a solver against a stale index fails with
    ErrStaleIndex.

 2. Fill a Queue with jobs: a verb (JobInstall, JobErase, JobUpdate,
    JobLock, JobFavor, JobDisfavor) applied to a selection (a solvable, a name,
    a dependency, a repo, or everything), optionally JobWeak.

 3. Create a Solver and Solve the queue. Solvables are SAT variables:
    - If a package is installed, one provider of each of its dependencies is
    installed.
    - At most one package per name is installed.
    - A package constraining a name excludes the packages of that name outside
    the constraint.
    - Every job is guarded by an activation literal, so an unsatisfiable
    problem names the jobs in conflict. Weak jobs in conflict are dropped,
    the others are explained line by line in a SolveError.
    The solution is then picked by satisfying the requested packages and their
    dependencies, preferring favored, installed (unless updated), higher
    priority repos, fewer track features, newer versions, higher build numbers
    and newer timestamps. Packages nothing requires are not part of it.

 4. Derive a Transaction, comparing the solution with the installed
    repository. Removals come first, then installs and replacements ordered so
    that dependencies precede their dependents, then the packages left as they
    are.

Everything belongs to the Pool: closing it invalidates every Repo, Solvable,
Solver and Transaction obtained from it.
*/
package solver
