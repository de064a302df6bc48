// Where: internal/domain/plan/report.go
// What: List-mode existence report.
// Why: Aggregate found/not-found per image and version for presentation and exit status.
package plan

// ListEntry records whether one image tag exists remotely.
type ListEntry struct {
	Tag    string `json:"tag"`
	Exists bool   `json:"exists"`
}

// ListImage groups the entries of one image in check order.
type ListImage struct {
	Image   string      `json:"image"`
	Entries []ListEntry `json:"entries"`
}

// Found returns the tags present remotely.
func (l ListImage) Found() []string {
	return l.filter(true)
}

// Missing returns the tags absent remotely.
func (l ListImage) Missing() []string {
	return l.filter(false)
}

func (l ListImage) filter(exists bool) []string {
	var out []string
	for _, e := range l.Entries {
		if e.Exists == exists {
			out = append(out, e.Tag)
		}
	}
	return out
}

// ListReport keeps images in selection order.
type ListReport struct {
	Images []ListImage `json:"images"`
}

// Record adds or updates an entry. A repeated tag keeps its first position.
func (r *ListReport) Record(image, tag string, exists bool) {
	idx := r.ensure(image)
	entries := r.Images[idx].Entries
	for i := range entries {
		if entries[i].Tag == tag {
			entries[i].Exists = exists
			return
		}
	}
	r.Images[idx].Entries = append(entries, ListEntry{Tag: tag, Exists: exists})
}

// Touch makes sure image appears in the report even with no entries.
func (r *ListReport) Touch(image string) {
	r.ensure(image)
}

func (r *ListReport) ensure(image string) int {
	for i := range r.Images {
		if r.Images[i].Image == image {
			return i
		}
	}
	r.Images = append(r.Images, ListImage{Image: image})
	return len(r.Images) - 1
}

// AnyMissing reports whether any checked tag was not found.
func (r ListReport) AnyMissing() bool {
	for _, img := range r.Images {
		if len(img.Missing()) > 0 {
			return true
		}
	}
	return false
}
