// Package model loads JSON model descriptions and compiles them operator by operator.
//
// A model file lists operators in declaration order and the flat set of variables:
//
//	{
//	  "ops": [
//	    {"type": "feed", "outputs": {"Out": ["image"]}},
//	    {"type": "relu", "inputs": {"X": ["image"]}, "outputs": {"Out": ["relu_0.tmp"]}},
//	    {"type": "fetch", "inputs": {"X": ["relu_0.tmp"]}}
//	  ],
//	  "vars": [
//	    {"name": "relu_0.tmp", "shape": [1, 3, 224, 224]}
//	  ]
//	}
//
// feed and fetch operators only name the graph inputs and outputs; they compile to
// nothing.
//
// Example usage:
//
//	m, err := model.Load("model.json", recording.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	compiled, err := m.Compile([]model.Variable{{Name: "image", Shape: tensor.Shape{1, 3, 224, 224}}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, op := range compiled.Ops {
//	    fmt.Printf("%s: %d program(s)\n", op.Name, len(op.Programs))
//	}
package model
