package checksum

import "testing"

func TestSum_KnownDigest(t *testing.T) {
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestLines_JoinsWithNewline(t *testing.T) {
	if Lines("a", "b") != Sum([]byte("a\nb")) {
		t.Error("Lines should digest parts joined by newlines")
	}
	if Lines("a\nb") != Lines("a", "b") {
		t.Error("a single part containing the separator should match")
	}
}

func TestMatches(t *testing.T) {
	data := []byte("p\n")
	sum := Sum(data)
	for _, v := range []string{sum, `"` + sum + `"`, `W/"` + sum + `"`, " " + sum} {
		if !Matches(v, data) {
			t.Errorf("Matches(%q) = false", v)
		}
	}
	if Matches(sum, []byte("q\n")) {
		t.Error("Matches accepted a digest of different content")
	}
}
