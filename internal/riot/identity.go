package riot

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"streamcheck/internal/services"
)

// Region is a routing cluster for account and match endpoints.
type Region string

const (
	RegionAmericas Region = "AMERICAS"
	RegionAsia     Region = "ASIA"
	RegionEurope   Region = "EUROPE"
	RegionSEA      Region = "SEA"
)

// Host returns the lower-cased host label used in API URLs.
func (r Region) Host() string {
	return strings.ToLower(string(r))
}

var tagCaser = cases.Upper(language.Und)

// Identity is an immutable player identity with its derived routing region.
type Identity struct {
	GameName string
	TagLine  string
	Region   Region
}

// String renders the identity in name#tag form.
func (id Identity) String() string {
	return id.GameName + "#" + id.TagLine
}

// ParseRiotID splits "name#tag" on the first '#'. Both halves are trimmed and
// must be non-empty.
func ParseRiotID(input string) (Identity, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Identity{}, services.Wrap(services.ErrFormat, "riot", "parse id", "riot id is required", nil)
	}
	name, tag, found := strings.Cut(input, "#")
	if !found {
		return Identity{}, services.Wrap(services.ErrFormat, "riot", "parse id",
			"riot id must be in format gameName#tagLine: "+input, nil)
	}
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if name == "" || tag == "" {
		return Identity{}, services.Wrap(services.ErrFormat, "riot", "parse id",
			"riot id must include gameName and tagLine: "+input, nil)
	}
	return Identity{GameName: name, TagLine: tag, Region: InferRegion(tag)}, nil
}

// InferRegion maps a tag line onto its routing region. Unknown tags route to
// the Americas cluster.
func InferRegion(tagLine string) Region {
	upper := tagCaser.String(strings.TrimSpace(tagLine))
	switch upper {
	case "KR", "JP":
		return RegionAsia
	case "EUNE", "EUW", "TR", "ME1", "RU":
		return RegionEurope
	case "OCE", "SG2", "TW2", "VN2":
		return RegionSEA
	}
	if strings.HasSuffix(upper, "EUW2") || strings.HasSuffix(upper, "EUNE") {
		return RegionEurope
	}
	return RegionAmericas
}
