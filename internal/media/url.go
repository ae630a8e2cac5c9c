package media

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildURL returns the delivery URL for publicID on cloudName, with
// transformations rendered as w_,h_,q_,f_,c_ in that order. It returns ""
// when either identifier is missing.
func BuildURL(cloudName, publicID string, t Transform) string {
	if cloudName == "" || publicID == "" {
		return ""
	}
	var parts []string
	if t.Width > 0 {
		parts = append(parts, "w_"+strconv.Itoa(t.Width))
	}
	if t.Height > 0 {
		parts = append(parts, "h_"+strconv.Itoa(t.Height))
	}
	if t.Quality != "" {
		parts = append(parts, "q_"+t.Quality)
	}
	if t.Format != "" {
		parts = append(parts, "f_"+t.Format)
	}
	if t.Crop != "" {
		parts = append(parts, "c_"+t.Crop)
	}
	transform := ""
	if len(parts) > 0 {
		transform = "/" + strings.Join(parts, ",")
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload%s/%s", cloudName, transform, publicID)
}
