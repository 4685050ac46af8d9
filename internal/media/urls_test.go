package media

import "testing"

func TestBuildURL(t *testing.T) {
	cases := []struct {
		name string
		opts URLOptions
		want string
	}{
		{"defaults", URLOptions{}, "https://res.cloudinary.com/demo/image/upload/c_fill,q_auto,f_auto/abc123"},
		{"width", URLOptions{Width: 100}, "https://res.cloudinary.com/demo/image/upload/c_fill,w_100,q_auto,f_auto/abc123"},
		{"all", URLOptions{Width: 400, Height: 300, Crop: "thumb", Quality: "80", Format: "webp"}, "https://res.cloudinary.com/demo/image/upload/c_thumb,w_400,h_300,q_80,f_webp/abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildURL("demo", "abc123", tc.opts); got != tc.want {
				t.Fatalf("BuildURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRecipe(t *testing.T) {
	if got := Recipe(1200, 630, "", "", ""); got != "c_fill,h_630,w_1200/q_auto/f_auto" {
		t.Fatalf("unexpected recipe %q", got)
	}
}

func TestGatewayURLBindsCloudName(t *testing.T) {
	g, err := NewGateway(&stubUploader{}, Config{CloudName: "acme"})
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	if got := g.URL("p", URLOptions{Height: 50}); got != "https://res.cloudinary.com/acme/image/upload/c_fill,h_50,q_auto,f_auto/p" {
		t.Fatalf("unexpected url %q", got)
	}
}
