package models

// ImageVariants holds the four renditions produced from one uploaded photo.
// A listing may reference the set only when all four URLs exist; a partially
// uploaded set is never persisted.
type ImageVariants struct {
	Thumb    string `json:"thumb"`
	Medium   string `json:"medium"`
	Full     string `json:"full"`
	Original string `json:"original"`
}

// Complete reports whether every rendition made it to storage.
func (v ImageVariants) Complete() bool {
	return v.Thumb != "" && v.Medium != "" && v.Full != "" && v.Original != ""
}
