package output

import (
	"strings"
	"testing"
	"time"

	"github.com/marcus/mx/internal/models"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		sec  int
		want string
	}{
		{0, "-"},
		{-5, "-"},
		{7, "0:07"},
		{65, "1:05"},
		{600, "10:00"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.sec); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.sec, got, tc.want)
		}
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()
	cases := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-time.Minute - time.Second), "1m ago"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-time.Hour - time.Minute), "1h ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-25 * time.Hour), "1d ago"},
		{now.Add(-3 * 24 * time.Hour), "3d ago"},
	}
	for _, tc := range cases {
		if got := FormatTimeAgo(tc.t); got != tc.want {
			t.Errorf("FormatTimeAgo(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}

	// Older than a week falls back to the date.
	old := now.Add(-10 * 24 * time.Hour)
	if got := FormatTimeAgo(old); got != old.Format("2006-01-02") {
		t.Errorf("FormatTimeAgo(old) = %q", got)
	}
}

func TestFormatItemShort(t *testing.T) {
	item := &models.MediaItem{
		ID:          "aud-00000001",
		Kind:        models.KindAudio,
		Title:       "Morning Mix",
		SyncStatus:  models.SyncPending,
		DurationSec: 125,
		Tags:        []string{"mix", "morning"},
	}
	line := FormatItemShort(item)
	for _, want := range []string{"aud-00000001", "audio", "Morning Mix", "2:05", "[mix,morning]"} {
		if !strings.Contains(line, want) {
			t.Errorf("FormatItemShort missing %q: %s", want, line)
		}
	}
}

func TestFormatItemLong(t *testing.T) {
	at := time.Now().Add(-2 * time.Hour)
	item := &models.MediaItem{
		ID:         "vid-00000001",
		Kind:       models.KindVideo,
		Title:      "Launch Recording",
		Author:     "Ops",
		MimeType:   "video/mp4",
		SyncStatus: models.SyncSynced,
		FilePath:   "/media/launch.mp4",
		UpdatedAt:  at,
	}
	text := FormatItemLong(item)
	for _, want := range []string{"Launch Recording", "Ops", "video/mp4", "/media/launch.mp4", "2h ago"} {
		if !strings.Contains(text, want) {
			t.Errorf("FormatItemLong missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Deleted:") {
		t.Error("live item should not render a deletion line")
	}
}
