package ir

// Equal reports deep structural equality: same variant at every node, same
// literal values, same bound-variable spelling. On canonical terms this is
// exactly alpha/beta/eta equivalence, since canonicalization has already
// collapsed each equivalence class to one representative.
func Equal(a, b *Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindVar:
		return a.Name == b.Name
	case KindLam:
		return a.Name == b.Name && Equal(a.Body, b.Body)
	case KindApp:
		return Equal(a.Fn, b.Fn) && Equal(a.Arg, b.Arg)
	case KindNum:
		return a.Num == b.Num
	case KindBool:
		return a.Bool == b.Bool
	case KindList:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
