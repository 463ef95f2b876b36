package boltstore

// AllBuckets returns every bucket name used across the native modules'
// stores, for callers opening a single shared BoltDB file.
func AllBuckets() []string {
	var all []string
	all = append(all, StabilityPoolBuckets()...)
	all = append(all, FURUSDBuckets()...)
	all = append(all, FURFIBuckets()...)
	all = append(all, LOANBuckets()...)
	all = append(all, ActivePoolBuckets()...)
	all = append(all, DefaultPoolBuckets()...)
	all = append(all, CollSurplusPoolBuckets()...)
	all = append(all, CommunityIssuanceBuckets()...)
	all = append(all, VestingBuckets()...)
	all = append(all, TrovesBuckets()...)
	return all
}
