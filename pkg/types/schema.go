package types

// Schema enumerates the valid options of constrained fields in the
// destination document.
type Schema interface {
	// Probe opens a transient inspection of the given node kind. The
	// caller must Release the probe on every path.
	Probe(kind string) (FieldProbe, error)
}

// FieldProbe answers option queries for one node kind.
type FieldProbe interface {
	// Options returns the option set of a field. constrained is false for
	// free-form fields and unknown field names; opts may be empty for a
	// constrained field whose option set is currently empty.
	Options(field string) (opts []string, constrained bool, err error)

	// Release discards the probe and any state it created. Idempotent.
	Release() error
}
