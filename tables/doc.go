// Package tables detects table regions on PDF pages.
//
// Detection works on the positioned text fragments and ruling lines of a
// [model.Page]. Two detectors are provided:
//
//   - [GeometricDetector] ("geometric") finds tables from text alignment
//     alone, so it handles tables drawn without gridlines
//   - [LatticeDetector] ("lattice") builds the grid from drawn ruling lines
//     and recovers merged cells from missing inner borders
//
// Detectors are created by name from a registry:
//
//	detector, err := tables.NewDetector("geometric")
//	found, err := detector.Detect(page)
//
// # Configuration
//
// Detector behavior is controlled by [Config]:
//
//	config := tables.DefaultConfig()
//	config.MinRows = 3
//	config.MinConfidence = 0.7
//	detector.Configure(config)
//
// # Confidence Scoring
//
// Geometric detection confidence (0-1) is based on:
//
//   - Grid regularity (30%)
//   - Alignment quality (30%)
//   - Ruling line presence (20%)
//   - Cell occupancy (20%)
package tables
