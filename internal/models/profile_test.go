package models

import (
	"testing"
	"time"
)

func TestXPThreshold(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 150},
		{2, 200},
		{5, 350},
		{10, 600},
	}

	for _, c := range cases {
		if got := XPThreshold(c.level); got != c.want {
			t.Errorf("XPThreshold(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestApplyXPNoLevelUp(t *testing.T) {
	p := &UserProfile{UID: "u1", Level: 5, XP: 140}

	ups := p.ApplyXP(10)

	if ups != 0 {
		t.Fatalf("ApplyXP(10) level-ups = %d, want 0", ups)
	}
	if p.Level != 5 || p.XP != 150 {
		t.Fatalf("profile after +10 XP: level=%d xp=%d, want level=5 xp=150", p.Level, p.XP)
	}
}

func TestApplyXPSingleCascade(t *testing.T) {
	p := &UserProfile{UID: "u1", Level: 5, XP: 140}

	ups := p.ApplyXP(300)

	if ups != 1 {
		t.Fatalf("ApplyXP(300) level-ups = %d, want 1", ups)
	}
	if p.Level != 6 || p.XP != 90 {
		t.Fatalf("profile after +300 XP: level=%d xp=%d, want level=6 xp=90", p.Level, p.XP)
	}
}

func TestApplyXPMultipleCascades(t *testing.T) {
	// Level 1 threshold 150, level 2 threshold 200.
	p := &UserProfile{UID: "u1", Level: 1, XP: 0}

	ups := p.ApplyXP(400)

	if ups != 2 {
		t.Fatalf("ApplyXP(400) level-ups = %d, want 2", ups)
	}
	if p.Level != 3 || p.XP != 50 {
		t.Fatalf("profile after +400 XP: level=%d xp=%d, want level=3 xp=50", p.Level, p.XP)
	}
}

func TestNewUserProfileDefaults(t *testing.T) {
	now := time.Now()
	p := NewUserProfile("u1", now)

	if p.Level != 1 || p.XP != 0 {
		t.Fatalf("new profile level=%d xp=%d, want level=1 xp=0", p.Level, p.XP)
	}
	if !p.FirstAccess {
		t.Fatalf("new profile FirstAccess = false, want true")
	}
	if p.IndicatorsCachedAt != nil {
		t.Fatalf("new profile has a cached indicator timestamp")
	}
}
