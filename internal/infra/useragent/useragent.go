package useragent

import (
	ua "github.com/mileusna/useragent"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
)

// Parser extracts device, OS and browser details from raw User-Agent strings.
type Parser struct{}

// NewParser constructs a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse breaks down a raw User-Agent header. Unknown or empty strings yield a
// zero-valued ClientInfo with only Raw populated.
func (p *Parser) Parse(raw string) domain.ClientInfo {
	if raw == "" {
		return domain.ClientInfo{Raw: raw}
	}

	parsed := ua.Parse(raw)

	return domain.ClientInfo{
		Device:         parsed.Device,
		OS:             parsed.OS,
		OSVersion:      parsed.OSVersion,
		Browser:        parsed.Name,
		BrowserVersion: parsed.Version,
		Mobile:         parsed.Mobile,
		Tablet:         parsed.Tablet,
		Desktop:        parsed.Desktop,
		Bot:            parsed.Bot,
		Raw:            raw,
	}
}

var _ port.UserAgentParser = (*Parser)(nil)
