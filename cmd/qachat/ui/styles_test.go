package ui

import (
	"strings"
	"testing"
)

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("QACHAT_DARK_MODE", "1")
	dark := DetectTheme()
	if !dark.IsDark {
		t.Fatalf("expected dark theme when QACHAT_DARK_MODE=1")
	}

	t.Setenv("QACHAT_DARK_MODE", "")
	light := DetectTheme()
	if light.IsDark {
		t.Fatalf("expected light theme when QACHAT_DARK_MODE is unset")
	}
}

func TestDetectTheme_COLORFGBG(t *testing.T) {
	t.Setenv("QACHAT_DARK_MODE", "")

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Error("background 0 should select dark theme")
	}

	t.Setenv("COLORFGBG", "0;15")
	if DetectTheme().IsDark {
		t.Error("background 15 should select light theme")
	}
}

func TestThemeByName(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("QACHAT_DARK_MODE", "")

	if !ThemeByName("dark").IsDark {
		t.Error("dark should be dark")
	}
	if ThemeByName("light").IsDark {
		t.Error("light should be light")
	}
	if ThemeByName("auto").IsDark {
		t.Error("auto without hints should detect light")
	}
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	if got := s.RenderDivider(0); got != "" {
		t.Errorf("zero width divider = %q, want empty", got)
	}
	if got := s.RenderDivider(5); !strings.Contains(got, "─────") {
		t.Errorf("divider %q should contain 5 rules", got)
	}
}

func TestMessageStylesByClass(t *testing.T) {
	s := NewStyles(LightTheme())

	label, body := s.Message("message user")
	if label.GetForeground() != s.UserLabel.GetForeground() || body.GetForeground() != s.UserMessage.GetForeground() {
		t.Error("user class should use the user styles")
	}

	label, body = s.Message("message bot")
	if label.GetForeground() != s.BotLabel.GetForeground() || !body.GetBorderLeft() {
		t.Error("bot class should use the bordered bot styles")
	}
}
