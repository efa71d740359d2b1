package m3u

import (
	"fmt"
	"io"
)

// Channel is one playlist entry: an EXTINF directive followed by the
// stream URI. SeqId preserves the order the entry appeared in.
type Channel struct {
	SeqId    uint64
	Title    string
	URI      string
	Duration float64
	TVGTags  *TVGTags
}

func (c *Channel) encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#EXTINF:%0.0f", c.Duration); err != nil {
		return err
	}

	if c.TVGTags != nil {
		if _, err := w.Write([]byte(" ")); err != nil {
			return err
		}

		if err := c.TVGTags.encode(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ",%s\n%s\n", c.Title, c.URI); err != nil {
		return err
	}

	return nil
}
