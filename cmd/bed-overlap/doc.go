// Copyright 2019 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Given a target BED file (e.g. all genes of a genome build) and a query BED
file (or a single -region), bed-overlap reports which target records each
query overlaps.  This command is similar to "bedtools intersect -wa -wb",
restricted to overlap reporting.

Targets are loaded into an in-memory per-chromosome index once; queries then
run against the immutable index, in parallel when -parallelism allows.

Output modes:

	(default) one line per (query, overlapping target) pair: the query's
	          first three columns, a tab, then the full target record
	-count    one line per query: the query's first three columns and the
	          number of overlapping targets
	-any      the query lines with at least one overlap, nothing else

Sample usage:
bed-overlap \
    -count \
    knownGene.bed \
    candidates.bed.gz
*/
package main
