package reconcile

// mergeShallow merges at depth 1: incoming keys overwrite identically-named
// existing keys wholesale; other existing keys are preserved. Neither input
// is mutated.
func mergeShallow(existing, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

// mergeDeep merges recursively: keys whose value is a mapping on both sides
// have their sub-keys merged, with incoming sub-keys winning on conflict.
// Non-mapping conflicts and non-overlapping keys behave like mergeShallow.
func mergeDeep(existing, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		existingChild, haveExisting := out[k].(map[string]any)
		incomingChild, haveIncoming := v.(map[string]any)
		if haveExisting && haveIncoming {
			out[k] = mergeDeep(existingChild, incomingChild)
			continue
		}
		out[k] = v
	}
	return out
}
