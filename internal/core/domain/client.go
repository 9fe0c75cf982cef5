package domain

// ClientInfo summarizes the parsed User-Agent header of a request.
type ClientInfo struct {
	Device         string
	OS             string
	OSVersion      string
	Browser        string
	BrowserVersion string
	Mobile         bool
	Tablet         bool
	Desktop        bool
	Bot            bool
	Raw            string
}

// DeviceClass collapses the boolean flags into a single label used in
// notification emails.
func (c ClientInfo) DeviceClass() string {
	switch {
	case c.Mobile:
		return "mobile"
	case c.Tablet:
		return "tablet"
	case c.Desktop:
		return "pc"
	case c.Bot:
		return "bot"
	default:
		return "unknown"
	}
}
