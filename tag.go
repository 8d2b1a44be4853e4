package libzmx

import (
	"context"
	"fmt"
	"strings"
)

// Surface object identity does not survive a pull: the design server keeps
// no labels, so a rebuilt sequence holds fresh surfaces. A tag embedded in
// the comment column ("text #tag#") rides along on the wire and lets a
// surface be found again afterwards.

// splitTag separates the visible comment text from a trailing "#tag#"
// marker. Comments without a marker return an empty tag.
func splitTag(comment string) (text, tag string) {
	if !strings.HasSuffix(comment, "#") {
		return comment, ""
	}
	i := strings.LastIndex(comment[:len(comment)-1], "#")
	if i < 0 {
		return comment, ""
	}
	return strings.TrimRight(comment[:i], " "), comment[i+1 : len(comment)-1]
}

// joinTag re-embeds a tag marker behind the comment text.
func joinTag(text, tag string) string {
	if tag == "" {
		return text
	}
	if text == "" {
		return "#" + tag + "#"
	}
	return text + " #" + tag + "#"
}

// Tag returns the identity tag embedded in the surface comment, or the
// empty string when there is none.
func (s *Surface) Tag(ctx context.Context) (string, error) {
	p, err := s.Param("comment")
	if err != nil {
		return "", err
	}
	comment, err := p.GetText(ctx)
	if err != nil {
		return "", err
	}
	_, tag := splitTag(comment)
	return tag, nil
}

// SetTag embeds an identity tag in the surface comment, preserving the
// visible text. The tag reaches the server on the next push.
func (s *Surface) SetTag(ctx context.Context, tag string) error {
	p, err := s.Param("comment")
	if err != nil {
		return err
	}
	comment, err := p.GetText(ctx)
	if err != nil {
		return err
	}
	text, _ := splitTag(comment)
	return p.SetText(joinTag(text, tag))
}

// FindTag returns the first surface whose comment carries the given tag,
// reading comments from the design server as needed.
func (q *SurfaceSequence) FindTag(ctx context.Context, tag string) (*Surface, error) {
	if tag == "" {
		return nil, fmt.Errorf("empty surface tag")
	}
	for _, s := range q.surfaces {
		got, err := s.Tag(ctx)
		if err != nil {
			return nil, err
		}
		if got == tag {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no surface tagged %q", tag)
}
