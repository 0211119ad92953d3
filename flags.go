package fatvol

// OpenFlags controls optional checks performed when a volume is opened. The
// zero value opens anything that decodes, leaving validation to the caller.
type OpenFlags int

const (
	// OpenFlagsStrict makes opening fail if the boot sector or the FS info
	// sector doesn't pass validation.
	OpenFlagsStrict = OpenFlags(1 << iota)

	// OpenFlagsRequireMirror makes opening fail if the two copies of the file
	// allocation table differ.
	OpenFlagsRequireMirror = OpenFlags(1 << iota)

	// OpenFlagsDecodeGeneric decodes sectors with the reflection-based decoder
	// instead of the field-by-field one. The results are identical; this exists
	// for cross-checking.
	OpenFlagsDecodeGeneric = OpenFlags(1 << iota)
)

// OpenFlagsDefault is the set of flags used when none are given.
const OpenFlagsDefault = OpenFlags(0)

// Has returns true if every flag in `f` is also set in `flags`.
func (flags OpenFlags) Has(f OpenFlags) bool {
	return flags&f == f
}
