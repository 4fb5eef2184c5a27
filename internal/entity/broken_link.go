package entity

// BrokenLink is one (page, link, problem) record of the issues index.
// Problem is an opaque category tag such as "404" or "timeout".
type BrokenLink struct {
	Page    string
	Link    string
	Problem string
}

// BlacklistKind selects the permanent or the temporary suppression set.
type BlacklistKind int

const (
	BlacklistPermanent BlacklistKind = iota
	BlacklistTemporary
)

// BlacklistKinds lists both suppression sets.
var BlacklistKinds = []BlacklistKind{BlacklistPermanent, BlacklistTemporary}

func (k BlacklistKind) String() string {
	if k == BlacklistTemporary {
		return "temporary"
	}
	return "permanent"
}

// PurgeResult reports the blacklist entries removed from one site.
type PurgeResult struct {
	Location string   `json:"location"`
	Purged   []string `json:"purged"`
}
