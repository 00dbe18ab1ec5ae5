package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/llehouerou/meeloq/internal/queue"
)

// Duration formats d as m:ss, or h:mm:ss past an hour. Zero renders as
// "--:--" since the server omits unknown durations.
func Duration(d time.Duration) string {
	if d <= 0 {
		return "--:--"
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Artists renders the primary artist followed by featured artists,
// e.g. "Artist feat. A & B".
func Artists(e queue.Entry) string {
	if len(e.Featuring) == 0 {
		return e.Artist.Name
	}
	names := make([]string, len(e.Featuring))
	for i, a := range e.Featuring {
		names[i] = a.Name
	}
	return e.Artist.Name + " feat. " + strings.Join(names, " & ")
}
