package utils

import "testing"

func TestCanonicalUUID(t *testing.T) {
	cases := map[string]string{
		"6F9619FF-8B86-D011-B42D-00C04FC964FF":          "6f9619ff-8b86-d011-b42d-00c04fc964ff",
		"6f9619ff-8b86-d011-b42d-00c04fc964ff":          "6f9619ff-8b86-d011-b42d-00c04fc964ff",
		"{6F9619FF-8B86-D011-B42D-00C04FC964FF}":        "6f9619ff-8b86-d011-b42d-00c04fc964ff",
		"urn:uuid:6F9619FF-8B86-D011-B42D-00C04FC964FF": "6f9619ff-8b86-d011-b42d-00c04fc964ff",
		"pat-1": "pat-1",
		"":      "",
	}
	for in, want := range cases {
		if got := CanonicalUUID(in); got != want {
			t.Errorf("CanonicalUUID(%q) = %q, want %q", in, got, want)
		}
	}
}
