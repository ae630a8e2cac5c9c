package media

import "testing"

func TestBuildURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cloud     string
		publicID  string
		transform Transform
		want      string
	}{
		{name: "plain", cloud: "glownexa", publicID: "skin_analysis/abc", want: "https://res.cloudinary.com/glownexa/image/upload/skin_analysis/abc"},
		{name: "size", cloud: "glownexa", publicID: "skin_analysis/abc", transform: Transform{Width: 300, Height: 200}, want: "https://res.cloudinary.com/glownexa/image/upload/w_300,h_200/skin_analysis/abc"},
		{name: "all in order", cloud: "glownexa", publicID: "p", transform: Transform{Crop: "fill", Format: "auto", Quality: "auto", Height: 10, Width: 20}, want: "https://res.cloudinary.com/glownexa/image/upload/w_20,h_10,q_auto,f_auto,c_fill/p"},
		{name: "no public id", cloud: "glownexa", want: ""},
		{name: "no cloud", publicID: "p", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BuildURL(tt.cloud, tt.publicID, tt.transform); got != tt.want {
				t.Fatalf("BuildURL = %q, want %q", got, tt.want)
			}
		})
	}
}
