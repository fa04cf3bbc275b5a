package ecs

// Each2 visits entities present in both stores, walking the smaller one in
// its dense order.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for i, id := range sa.ids {
			if j, ok := sb.index[id]; ok {
				fn(id, sa.comps[i], sb.comps[j])
			}
		}
		return
	}
	for j, id := range sb.ids {
		if i, ok := sa.index[id]; ok {
			fn(id, sa.comps[i], sb.comps[j])
		}
	}
}
