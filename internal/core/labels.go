package core

import "fmt"

// ImageClasses is indexed by the image classifier's output position.
var ImageClasses = []string{"Leaf Spot", "Healthy", "Mite Damage"}

const (
	LabelHealthy   = "Healthy"
	LabelUnhealthy = "Unhealthy"
)

// ImageLabel returns the class name with the highest score. Ties resolve to
// the lowest index.
func ImageLabel(scores []float32) (string, error) {
	if len(scores) != len(ImageClasses) {
		return "", fmt.Errorf("expected %d class scores, got %d", len(ImageClasses), len(scores))
	}

	maxIdx := 0
	for i, v := range scores {
		if v > scores[maxIdx] {
			maxIdx = i
		}
	}
	return ImageClasses[maxIdx], nil
}

// TabularLabel maps the forest's predicted class. Only 0 and 1 are valid
// classes; anything else means the artifact is not the expected classifier.
func TabularLabel(prediction []float32) (string, error) {
	if len(prediction) == 0 {
		return "", fmt.Errorf("tabular model returned no prediction")
	}
	switch prediction[0] {
	case 1:
		return LabelHealthy, nil
	case 0:
		return LabelUnhealthy, nil
	default:
		return "", fmt.Errorf("unexpected tabular prediction value %v", prediction[0])
	}
}
