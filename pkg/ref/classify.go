package ref

import "fmt"

// ClassifyOptions constrains the result of Classify.
type ClassifyOptions struct {
	// Exclude lists kinds that must not appear among the inputs.
	Exclude []Kind

	// RequireSame demands that all inputs classify to a single kind.
	RequireSame bool
}

// Classify groups URIs into resource-kind buckets. Order within a bucket
// follows input order. Returns ErrKindExcluded if an input classifies to
// an excluded kind, and ErrMixedKinds if RequireSame is set and more than
// one kind is present. Classification itself is pure and deterministic.
func Classify(uris []string, opts ClassifyOptions) (map[Kind][]string, error) {
	groups := make(map[Kind][]string)
	for _, uri := range uris {
		kind := KindOf(uri)
		groups[kind] = append(groups[kind], uri)
	}

	for _, kind := range opts.Exclude {
		if _, ok := groups[kind]; ok {
			return nil, fmt.Errorf("%w: %s", ErrKindExcluded, kind)
		}
	}

	if opts.RequireSame && len(groups) > 1 {
		return nil, ErrMixedKinds
	}

	return groups, nil
}
