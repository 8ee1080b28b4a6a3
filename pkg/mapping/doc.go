// Package mapping derives an OpenSearch index mapping from the shape of a Go type.
//
// Infer walks the exported fields of a struct (following json tags, skipping
// fields tagged "-") and produces the "properties" document accepted by the
// put-mapping API:
//
//	string               -> text with a "keyword" sub-field (ignore_above 256)
//	bool                 -> boolean
//	int8/16/32, int      -> integer (int and int64 map to long)
//	uint types           -> long
//	float32 / float64    -> float / double
//	time.Time            -> date
//	struct, map          -> object (structs recurse into properties)
//	slices and arrays    -> mapping of the element type
//	[]byte               -> binary
//
// Types that already know their mapping can implement Mapper; Infer uses the
// returned properties verbatim.
package mapping
