// Package agglo implements agglomerative hierarchical clustering.
//
// Starting from n singletons, the engine repeatedly merges the two least
// dissimilar clusters until one remains. The result is a dendrogram in
// pointer representation: every item except the root points to the item it
// was merged into, together with the merge height.
//
// Basic usage:
//
//	cfg := agglo.DefaultConfig()
//	cfg.Linkage = agglo.AverageLinkage{}
//	h, err := agglo.Cluster(data, cfg)
//	// h.Parent(i) is the item that absorbed item i
//	// h.MergeHeight(i) is the distance at which that happened
//	// h.Linkage() is the same tree as a scipy-style linkage matrix
//
// For precomputed distances:
//
//	h, err := agglo.ClusterPrecomputed(distMatrix, n, cfg)
//	h, err := agglo.ClusterFunc(n, func(i, j int) float64 { ... }, cfg)
//
// # Linkage rules
//
// Distances between merged clusters are derived with the Lance-Williams
// recurrence, so the raw distance function is called only once per pair.
// SingleLinkage, CompleteLinkage, AverageLinkage, WeightedAverageLinkage,
// WardLinkage, CentroidLinkage, MedianLinkage and FlexibleBetaLinkage are
// provided. Ward, centroid and median linkage work on squared distances;
// the engine squares the input and reports heights back in input units
// unless Config.SquaredInput says the input is already squared.
//
// ClusterMiniMax implements MiniMax linkage, where each merged cluster is
// represented by a prototype item. It has no Lance-Williams form and
// recomputes distances from the raw distance function after each merge.
//
// # Strategies
//
// Config.Strategy chooses how the next merge is found:
//
//	cfg.Strategy = agglo.StrategyExhaustive // O(n³) full scan, always correct
//	cfg.Strategy = agglo.StrategyAnderberg  // cached nearest neighbors, O(n²) typical
//	cfg.Strategy = agglo.StrategyNNChain    // nearest-neighbor chain, O(n²), reducible rules only
//	cfg.Strategy = agglo.StrategyMST        // Prim's MST, single linkage only, O(n) memory
//
// StrategyAuto (the default) uses the NN-chain for reducible rules and
// Anderberg otherwise. Requesting the NN-chain with a non-reducible rule
// (centroid, median, flexible-beta with Beta != 0) returns ErrNonReducible.
//
// All strategies except StrategyMST keep an n(n-1)/2 distance matrix. Runs
// with more than MaxItems items are rejected with ErrTooManyItems.
package agglo
