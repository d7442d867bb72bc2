package modules

// MergeExtensions appends operator extensions to base. Extension order is
// kept exactly, nothing is de-duplicated or validated, and neither input is
// modified.
func MergeExtensions(base Bundle, extensions []Descriptor) Bundle {
	out := make(Bundle, 0, len(base)+len(extensions))
	out = append(out, base...)
	return append(out, extensions...)
}
