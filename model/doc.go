// Package model provides the intermediate representation shared by every
// stage of a table conversion.
//
// Sources (HTML documents, PDF pages, workbooks) are reduced to a
// [SourceTable]: ordered rows of raw cell descriptors carrying declared
// row and column spans. The grid builder turns a SourceTable into a
// rectangular [Grid], the header resolver produces a [HeaderSpec], and the
// record projector emits a [Result].
//
// # Values
//
// A [Value] is either text or one or more nested tables:
//
//	v := model.TextValue("Alice")
//	nested := model.TablesValue(inner)
//
// Text values encode as JSON strings. A value holding a single nested table
// encodes as that table; several nested tables encode as an array.
//
// # Results
//
// A [Result] encodes as an array of objects when a header is present and as
// an array of arrays otherwise. Record keys keep column order in both JSON
// and YAML output.
//
// # Geometry
//
// [BBox] and [Point] describe positions of PDF text fragments and ruling
// lines in user space (origin at the bottom left).
package model
