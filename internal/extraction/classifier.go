package extraction

import "strings"

// Classifier decides the output shape for a scanned document. It is a
// heuristic: false negatives fall back to generic mode, which is always
// structurally valid.
type Classifier interface {
	Classify(pages []PageText) DocumentMode
}

// KeywordClassifier flags a document as a maintenance case when any page
// carries the device-name marker, or both the model and fault markers.
type KeywordClassifier struct {
	DeviceMarker string
	ModelMarker  string
	FaultMarker  string
}

var _ Classifier = (*KeywordClassifier)(nil)

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		DeviceMarker: "设备名称",
		ModelMarker:  "机型",
		FaultMarker:  "故障名称",
	}
}

func (c *KeywordClassifier) Classify(pages []PageText) DocumentMode {
	for _, page := range pages {
		if strings.Contains(page.Text, c.DeviceMarker) {
			return ModeMaintenanceCase
		}
		if strings.Contains(page.Text, c.ModelMarker) && strings.Contains(page.Text, c.FaultMarker) {
			return ModeMaintenanceCase
		}
	}
	return ModeGeneric
}
