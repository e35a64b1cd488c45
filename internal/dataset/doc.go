// Package dataset assembles YOLO-style training datasets from annotation
// exports.
//
// An export set is a directory holding an images/ folder and a labels/ folder
// where every label file shares its image's basename with a .txt extension.
// Assembly runs three steps in strict order:
//
//   - Merge: only when more than one export set is supplied, copy all of them
//     into a single export-shaped directory (last writer wins on collisions).
//   - Split: shuffle the qualifying images and copy them, together with their
//     labels, into train/ and val/ partitions.
//   - Manifest: write data.yaml declaring the absolute image paths, the class
//     count and the ordered class names.
//
// Every step is synchronous and the first failure aborts the run.
package dataset
