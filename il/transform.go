package il

// RemoveNops deletes nop expressions from every block (plain or basic)
// nested under root, root included. The nops' spans are relocated
// through DeleteRange, so coverage is preserved.
func RemoveNops(root Node) {
	for nested := range SelfAndChildrenRecursive[BodyOwner](root) {
		removeNopsShallow(nested)
	}
}

func removeNopsShallow(block BodyOwner) {
	body := block.bodyRef()
	for i := 0; i < len(*body); {
		if !isNop((*body)[i]) {
			i++
			continue
		}
		end := i + 1
		for end < len(*body) && isNop((*body)[end]) {
			end++
		}
		DeleteRange(block, i, end)
	}
}

func isNop(n Node) bool {
	expr, ok := n.(*ILExpression)
	return ok && expr.Code == Nop
}
