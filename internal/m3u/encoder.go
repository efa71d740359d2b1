package m3u

import (
	"fmt"
	"io"
	"strings"
)

// Encoder builds an M3U playlist channel by channel. Guide URLs, when
// present, end up in the tvg-url attribute of the header line.
type Encoder struct {
	guideURLs []string
	channels  []*Channel
}

func NewEncoder(guideURLs []string) *Encoder {
	return &Encoder{guideURLs: guideURLs, channels: []*Channel{}}
}

func (e *Encoder) AddChannel(c *Channel) {
	e.channels = append(e.channels, c)
}

// Encode writes the header followed by every added channel in order.
func (e *Encoder) Encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#EXTM3U"); err != nil {
		return err
	}

	if len(e.guideURLs) > 0 {
		if _, err := fmt.Fprintf(w, " tvg-url=%q", strings.Join(e.guideURLs, ",")); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	for _, c := range e.channels {
		if err := c.encode(w); err != nil {
			return err
		}
	}

	return nil
}
