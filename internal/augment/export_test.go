package augment

// Exports for black-box tests.

// CollapseSpaces exports collapseSpaces.
var CollapseSpaces = collapseSpaces

// ProtectDecimals applies the decimal guard the way one augmentation call does.
func ProtectDecimals(marker, sentence string) string {
	return newDecimalGuard(marker, sentence).protect(sentence)
}

// RestoreDecimals reverses ProtectDecimals for a guard built from original.
func RestoreDecimals(marker, original, guarded string) string {
	return newDecimalGuard(marker, original).restore(guarded)
}
