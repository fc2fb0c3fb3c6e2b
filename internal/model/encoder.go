package model

// CategoryEncoder maps a finite set of known string labels to integer codes.
// Codes follow the label order declared in the bundle artifact, which is the
// order the classifier was trained against. Unknown labels are rejected.
type CategoryEncoder struct {
	labels []string
	codes  map[string]int
}

// NewCategoryEncoder builds an encoder assigning each label its index.
func NewCategoryEncoder(labels []string) *CategoryEncoder {
	codes := make(map[string]int, len(labels))
	for i, l := range labels {
		codes[l] = i
	}
	return &CategoryEncoder{labels: append([]string(nil), labels...), codes: codes}
}

// Encode returns the integer code for label, or false if the label is not
// among the encoder's known set.
func (e *CategoryEncoder) Encode(label string) (int, bool) {
	code, ok := e.codes[label]
	return code, ok
}

// Labels returns a copy of the accepted labels in code order.
func (e *CategoryEncoder) Labels() []string {
	return append([]string(nil), e.labels...)
}
