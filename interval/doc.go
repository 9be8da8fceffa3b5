/*Package interval implements batched overlap detection over sets of genomic
  intervals of the kind represented by BED files.  Unlike an interval-union,
  every inserted interval is tracked individually, so queries return the
  stored records themselves (with any caller-attached payload) rather than a
  merged coordinate set.
  Intervals are partitioned by reference name; each partition is loaded with
  Detector.Add, frozen with Detector.Index, and then queried any number of
  times, concurrently if desired.
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM is limited to.
*/
package interval
