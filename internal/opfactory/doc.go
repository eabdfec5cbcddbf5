// Package opfactory compiles one model operator at a time into GPU programs.
//
// For every operator the Compiler:
//   - resolves the raw input/output names to catalog variables and canonical roles
//     ("origin", "filter", "out", ...),
//   - runs the behaviors registered for the (backend, operator) pair: shape inference,
//     attribute normalization, fusion merging and layout adaptation,
//   - builds a tensor.Descriptor per bound tensor,
//   - synthesizes one shader parameter map per output tensor,
//   - asks the ProgramBackend for one program per output.
//
// Shape changes are staged in the catalog and published with Commit, so the next
// operator sees them.
//
// Example usage:
//
//	c, err := opfactory.NewCompiler(cat, backend, opfactory.NewRegistry(), opfactory.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	op, err := c.Compile(spec, layer, feed)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c.Commit()
//	for _, program := range op.Programs {
//	    // dispatch
//	}
package opfactory
