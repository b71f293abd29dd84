package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/edgard/lunchbot/internal/config"
	"github.com/edgard/lunchbot/internal/database"
)

// DisplayName resolves a human-readable name for a lunch entry.
// Priority: first+last name > first name > @username > fallback.
func DisplayName(entry database.LunchEntry, fallback string) string {
	switch {
	case entry.FirstName != "" && entry.LastName != "":
		return entry.FirstName + " " + entry.LastName
	case entry.FirstName != "":
		return entry.FirstName
	case entry.Username != "":
		return "@" + entry.Username
	default:
		return fallback
	}
}

// RenderSchedule produces the pinned message text for an ordered schedule
// list: header, one line per entry, and a last-updated footer. An empty
// schedule gets a distinct body instead of an empty list.
func RenderSchedule(entries []database.LunchEntry, msgs *config.Messages, now time.Time) string {
	var b strings.Builder

	b.WriteString(msgs.ScheduleHeader)
	b.WriteString("\n\n")

	if len(entries) == 0 {
		b.WriteString(msgs.ScheduleEmpty)
	} else {
		for _, entry := range entries {
			fmt.Fprintf(&b, "🕐 <b>%s</b> - %s\n", entry.LunchTime, DisplayName(entry, msgs.FallbackName))
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, msgs.ScheduleFooter, now.Format("15:04"))

	return b.String()
}

// Fingerprint computes a deterministic digest over the ordered schedule
// list, used to detect content drift without comparing rendered text. Any
// field change, addition, or removal alters the digest with overwhelming
// likelihood; collisions only cost a skipped edit.
func Fingerprint(entries []database.LunchEntry) uint64 {
	d := xxhash.New()
	for _, entry := range entries {
		d.WriteString(strconv.FormatInt(entry.UserID, 10))
		d.WriteString("\x1f")
		d.WriteString(entry.Username)
		d.WriteString("\x1f")
		d.WriteString(entry.FirstName)
		d.WriteString("\x1f")
		d.WriteString(entry.LastName)
		d.WriteString("\x1f")
		d.WriteString(entry.LunchTime)
		d.WriteString("\x1e")
	}
	return d.Sum64()
}
