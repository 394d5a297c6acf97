package moderation

import (
	"strings"
	"testing"
)

func TestCheckContentBlocksWholeWord(t *testing.T) {
	res := CheckContent("I hate you")
	if res.IsAllowed {
		t.Fatalf("expected whole-word match to block, got %+v", res)
	}
	if !strings.Contains(res.Message, "hate") {
		t.Errorf("expected matched keyword in message, got %q", res.Message)
	}
}

func TestCheckContentIgnoresSubstring(t *testing.T) {
	res := CheckContent("Beautiful Chateau for sale")
	if !res.IsAllowed {
		t.Fatalf("substring match must not block, got %+v", res)
	}
}

func TestCheckContentCaseInsensitive(t *testing.T) {
	for _, text := range []string{"HATE speech", "HaTe", "selling a WEAPON"} {
		if res := CheckContent(text); res.IsAllowed {
			t.Errorf("expected %q to be blocked", text)
		}
	}
}

func TestCheckContentFirstCategoryWins(t *testing.T) {
	// "weapon" (prohibited goods) is scanned before "hate" (hate or violence).
	res := CheckContent("hate this weapon")
	if res.IsAllowed {
		t.Fatal("expected block")
	}
	if !strings.Contains(res.Message, "prohibited goods") {
		t.Errorf("expected the first matching category, got %q", res.Message)
	}
	if strings.Contains(res.Message, "hate") {
		t.Errorf("later categories must not leak into the message: %q", res.Message)
	}
}

func TestCheckContentCleanText(t *testing.T) {
	res := CheckContent("Barely used mountain bike, great condition")
	if !res.IsAllowed {
		t.Fatalf("clean text blocked: %+v", res)
	}
	if res.Message != "" {
		t.Errorf("expected empty message for allowed text, got %q", res.Message)
	}
}

func TestModerateListingTitleShortCircuit(t *testing.T) {
	res := ModerateListing("Hate the world", "fine")
	if res.IsAllowed {
		t.Fatal("expected title rejection")
	}
	if !strings.Contains(res.Message, "hate") {
		t.Errorf("expected the title's matched keyword, got %q", res.Message)
	}
}

func TestModerateListingDescriptionChecked(t *testing.T) {
	res := ModerateListing("Nice bike", "stolen goods, cheap")
	if res.IsAllowed {
		t.Fatal("expected description rejection")
	}

	res = ModerateListing("Nice bike", "well maintained")
	if !res.IsAllowed {
		t.Fatalf("clean listing blocked: %+v", res)
	}
}
