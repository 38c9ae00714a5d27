package testutil

// WithHeadScene adds a small volume scene:
//
//	10 ScalarVolume "MRHead"
//	20 ScalarVolumeDisplay  volume -> 10
//	30 Model "skull"
func (b *Builder) WithHeadScene() *Builder {
	return b.
		WithNode(10, "ScalarVolume", Name("MRHead"), Attr("spacing", "1 1 1")).
		WithNode(20, "ScalarVolumeDisplay").
		WithNode(30, "Model", Name("skull")).
		WithReference(20, "volume", 10)
}

// WithSegmentationScene adds a segmentation with display and storage nodes
// pointing back at it, plus the volume it was drawn on.
//
//	1 ScalarVolume "CT"
//	2 Segmentation "organs"     master -> 1, display -> 3, storage -> 4
//	3 SegmentationDisplay
//	4 SegmentationStorage
func (b *Builder) WithSegmentationScene() *Builder {
	return b.
		WithNode(1, "ScalarVolume", Name("CT")).
		WithNode(2, "Segmentation", Name("organs"), Attrs(map[string]string{
			"segments": "liver,spleen",
			"geometry": "1 0 0 0 1 0 0 0 1",
		})).
		WithNode(3, "SegmentationDisplay", Attr("opacity", "0.5")).
		WithNode(4, "SegmentationStorage", Attr("file", "organs.seg.nrrd")).
		WithReference(2, "master", 1).
		WithReference(2, "display", 3).
		WithReference(2, "storage", 4)
}
