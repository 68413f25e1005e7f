// Package pipeline provides the declarative composition layer: nodes
// binding functions to named inputs, outputs and parameters; pipelines as
// flattened, ordered node collections; and pure selection filters over
// them.
//
// Construction validates eagerly and fails whole: no partially-built node
// or pipeline escapes. Missing data dependencies are deliberately NOT
// checked here, because inputs may come from the catalog at run time.
package pipeline
