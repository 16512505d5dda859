// Package traverse implements the two graph queries: bounded path search
// between two nodes and level-bounded neighborhood expansion around one node.
//
// # Path Search
//
// [Traverser.FindPaths] runs a breadth-first search over the undirected view
// and keeps only paths whose symptom-symptom associations agree on context:
// the anchor sets of all such ASSOCIATED_WITH links along the path must share
// at least one id. Paths come back shortest first.
//
//	tr := traverse.New(g)
//	res, err := tr.FindPaths("S_cough", "D_asthma", traverse.PathParams{MaxPaths: 3, MaxDepth: 6})
//	for _, p := range res.Paths {
//	    fmt.Println(p.Nodes, p.Shared)
//	}
//
// # Expansion
//
// [Traverser.Expand] grows an ego network level by level. Each frontier node
// introduces at most MaxFanout new nodes, drawn round-robin across relation
// types. Associations whose context is not yet grounded in the neighborhood
// wait in a retry list that is re-checked after every level.
//
//	sub, err := tr.Expand("D_asthma", traverse.ExpandParams{Level: 2, MaxFanout: 7})
//
// # Parameters
//
// [PathParams] and [ExpandParams] are validated before any work starts.
// Out-of-range values yield an INVALID_PARAMETER error from package errors.
package traverse
