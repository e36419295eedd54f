package matching

import (
	"strings"

	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
)

// IdentityOf derives the matcher input from an extracted payload. When only a
// free-text title is known, its first two name parts stand in for the
// first names ("Amanda & Justin Kong" -> Amanda, Justin).
func IdentityOf(p *extraction.Payload) Identity {
	var id Identity
	switch {
	case p.Contract != nil:
		c := p.Contract
		id = Identity{
			PrimaryFirstName:   c.Bride.FirstName,
			SecondaryFirstName: c.Groom.FirstName,
			DisplayName:        entity.DisplayName(c.Bride, c.Groom),
			WeddingDate:        c.WeddingDate,
		}
	case p.Extras != nil:
		id = Identity{DisplayName: p.Extras.CoupleName, WeddingDate: p.Extras.WeddingDate}
	case p.Quote != nil:
		q := p.Quote
		id = Identity{
			PrimaryFirstName:   q.BrideFirstName,
			SecondaryFirstName: q.GroomFirstName,
			DisplayName:        q.CoupleName,
			WeddingDate:        q.WeddingDate,
		}
		if id.DisplayName == "" {
			id.DisplayName = entity.DisplayName(entity.Party{FirstName: q.BrideFirstName}, entity.Party{FirstName: q.GroomFirstName})
		}
	}
	if id.PrimaryFirstName == "" && id.SecondaryFirstName == "" {
		id.PrimaryFirstName, id.SecondaryFirstName = splitTitle(id.DisplayName)
	}
	return id
}

func splitTitle(title string) (string, string) {
	parts := strings.FieldsFunc(title, func(r rune) bool { return r == '&' || r == '+' })
	if len(parts) < 2 {
		lower := strings.ToLower(title)
		if i := strings.Index(lower, " and "); i > 0 {
			parts = []string{title[:i], title[i+5:]}
		}
	}
	first := func(s string) string {
		f := strings.Fields(s)
		if len(f) == 0 {
			return ""
		}
		return f[0]
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return first(parts[0]), ""
	default:
		return first(parts[0]), first(parts[1])
	}
}
