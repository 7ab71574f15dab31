// Package dataset assembles a detector training set from annotated sources.
//
// A build runs four stages in order, all sequentially on one goroutine:
//
//  1. Collector pairs every source image with its label file and gives the
//     pair a provenance name that is unique across the pool.
//  2. Expander runs the imaging cascade over each seed image, staging one new
//     image per operator next to a verbatim copy of the source label.
//  3. Split shuffles the whole pool with a locally seeded generator and cuts
//     it into validation and training subsets.
//  4. Materializer empties the output split directories, copies every pair
//     under its provenance name and writes the manifest.
//
// Pipeline wires the stages together; Importer reuses the collector and
// materializer to turn a flat images/labels tree into a train/val layout.
//
// # Determinism
//
// Directory listings are sorted before use, the pool keeps insertion order,
// and every random draw comes from a generator seeded from the configuration.
// Identical inputs therefore always produce identical splits.
//
// # Failure Model
//
// Per-item problems (a missing label, a failing operator, a duplicate name)
// are logged, counted in the Report and skipped. Missing seed images, an
// empty pool or an unwritable output tree abort the build.
package dataset
