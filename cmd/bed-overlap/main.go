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
package main

/*
bed-overlap reports, for each query region, the target BED records it
overlaps.  Targets are loaded and indexed once, then every query runs against
the immutable index, optionally in parallel.
*/

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/bedlite/encoding/bed"
	"github.com/grailbio/bedlite/interval"
)

var (
	anyOnly     = flag.Bool("any", false, "Report each query line with at least one overlap, instead of the overlapping target records")
	countOnly   = flag.Bool("count", false, "Report each query with its overlap count, instead of the overlapping target records")
	region      = flag.String("region", "", "Query a single region instead of a query BED. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>")
	parallelism = flag.Int("parallelism", 0, "Maximum number of simultaneous query jobs to launch; 0 = runtime.NumCPU()")
)

func bedOverlapUsage() {
	fmt.Printf("Usage: %s [OPTIONS] targetspath [queriespath]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// queryOne renders one query's report.  It only reads the detector, so any
// number of copies may run concurrently once the index is built.
func queryOne(detector *interval.Detector, query interval.Interval, queryLine string) (string, error) {
	if *anyOnly {
		hit, err := detector.OverlapsAny(query)
		if err != nil || !hit {
			return "", err
		}
		return queryLine + "\n", nil
	}
	hits, err := detector.Overlapping(query)
	if err != nil {
		return "", err
	}
	if *countOnly {
		return fmt.Sprintf("%s\t%d\n", queryLine, len(hits)), nil
	}
	var sb strings.Builder
	for _, hit := range hits {
		rec := hit.Payload.(bed.Record)
		sb.WriteString(queryLine)
		sb.WriteByte('\t')
		sb.WriteString(rec.Line(rec.NumFields()))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func run(targetsPath, queriesPath string) error {
	start := time.Now()
	detector, err := bed.NewDetectorFromPath(targetsPath, interval.DetectorOpts{})
	if err != nil {
		return err
	}
	log.Printf("indexed %d target interval(s) on %d reference(s) in %v",
		detector.Len(), len(detector.RefNames()), time.Since(start))

	var queries []interval.Interval
	var queryLines []string
	if *region != "" {
		query, err := interval.ParseRegionString(*region)
		if err != nil {
			return err
		}
		queries = []interval.Interval{query}
		queryLines = []string{*region}
	} else {
		recs, err := bed.ReadAllFromPath(queriesPath)
		if err != nil {
			return err
		}
		queries = make([]interval.Interval, len(recs))
		queryLines = make([]string, len(recs))
		for i := range recs {
			queries[i] = recs[i].Interval()
			queryLines[i] = recs[i].Line(bed.MinFields)
		}
	}

	nJob := *parallelism
	if nJob <= 0 {
		nJob = runtime.NumCPU()
	}
	if nJob > len(queries) {
		nJob = len(queries)
	}
	reports := make([]string, len(queries))
	if err := traverse.Each(nJob, func(jobIdx int) error {
		for i := jobIdx; i < len(queries); i += nJob {
			report, err := queryOne(detector, queries[i], queryLines[i])
			if err != nil {
				return err
			}
			reports[i] = report
		}
		return nil
	}); err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	for _, report := range reports {
		if _, err := w.WriteString(report); err != nil {
			return err
		}
	}
	return w.Flush()
}

func main() {
	flag.Usage = bedOverlapUsage
	shutdown := grail.Init()
	defer shutdown()

	if *anyOnly && *countOnly {
		log.Fatalf("-any and -count are mutually exclusive")
	}
	args := flag.Args()
	wantArgs := 2
	if *region != "" {
		wantArgs = 1
	}
	if len(args) != wantArgs {
		log.Fatalf("Expected %d positional argument(s); please check flag syntax: '%s'", wantArgs, strings.Join(args, " "))
	}
	targetsPath := args[0]
	queriesPath := ""
	if *region == "" {
		queriesPath = args[1]
	}
	if err := run(targetsPath, queriesPath); err != nil {
		log.Fatalf("bed-overlap: %v", err)
	}
}
