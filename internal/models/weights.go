package models

// Weight is a single component of the grading formula
type Weight struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CourseWeights keeps grading components in sheet order. Labels are unique.
type CourseWeights []Weight

// Set adds a component or overwrites the weight of an existing label in place
func (w *CourseWeights) Set(label string, value float64) {
	for i := range *w {
		if (*w)[i].Label == label {
			(*w)[i].Value = value
			return
		}
	}
	*w = append(*w, Weight{Label: label, Value: value})
}
